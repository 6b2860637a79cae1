package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [pergunta]",
	Short: "Ask the chatbot a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ask(cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

type askResponse struct {
	Question string `json:"pergunta"`
	Answer   string `json:"resposta"`
	Sources  []struct {
		Label   string `json:"fonte"`
		Snippet string `json:"snippet"`
	} `json:"fontes"`
	Error string `json:"erro"`
}

func ask(out io.Writer, question string) error {
	payload, err := json.Marshal(map[string]string{"pergunta": question})
	if err != nil {
		return fmt.Errorf("error creating JSON payload: %w", err)
	}

	resp, err := httpClient().Post(strings.TrimRight(serverURL, "/")+"/ask/", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error asking question: %w", err)
	}
	defer resp.Body.Close()

	var result askResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("error decoding response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, result.Error)
	}

	fmt.Fprintln(out, result.Answer)
	if len(result.Sources) > 0 {
		fmt.Fprintln(out, "\nFontes:")
		for _, s := range result.Sources {
			fmt.Fprintf(out, "- %s: %s\n", s.Label, s.Snippet)
		}
	}
	return nil
}
