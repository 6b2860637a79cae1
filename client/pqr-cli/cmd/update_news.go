package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var updateTestMode bool

var updateNewsCmd = &cobra.Command{
	Use:   "update-news",
	Short: "Trigger the daily news collection on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateNews(cmd.OutOrStdout(), updateTestMode)
	},
}

func init() {
	updateNewsCmd.Flags().BoolVar(&updateTestMode, "test", false, "test mode: fewer results, nothing persisted")
	rootCmd.AddCommand(updateNewsCmd)
}

type updateNewsResponse struct {
	Status   string          `json:"status"`
	TestMode bool            `json:"modo_teste"`
	Count    int             `json:"qtde_artigos"`
	Articles json.RawMessage `json:"artigos"`
	Message  string          `json:"mensagem"`
}

func updateNews(out io.Writer, test bool) error {
	url := strings.TrimRight(serverURL, "/") + "/update_news/"
	if test {
		url += "?teste=1"
	}
	resp, err := httpClient().Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("error triggering collection: %w", err)
	}
	defer resp.Body.Close()

	var result updateNewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("error decoding response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("collection failed: %s", result.Message)
	}

	fmt.Fprintf(out, "Status: %s (modo teste: %t)\nArtigos novos: %d\n", result.Status, result.TestMode, result.Count)
	if test {
		var pretty strings.Builder
		var articles []map[string]any
		if err := json.Unmarshal(result.Articles, &articles); err == nil {
			enc := json.NewEncoder(&pretty)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(articles); err == nil {
				fmt.Fprint(out, pretty.String())
			}
		}
		return nil
	}
	var titles []string
	if err := json.Unmarshal(result.Articles, &titles); err != nil {
		return fmt.Errorf("error decoding titles: %w", err)
	}
	for _, t := range titles {
		fmt.Fprintf(out, "- %s\n", t)
	}
	return nil
}
