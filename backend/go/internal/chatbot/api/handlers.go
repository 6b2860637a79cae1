package api

import (
	"context"
	"encoding/json"
	"net/http"

	"PerguntaQueRespondo/backend/go/internal/crawler/collector"
	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Messages returned to clients.
const (
	MsgEmptyQuestion = "Pergunta vazia"
	MsgUsePost       = "Use POST (JSON) ou GET (?q=...)"
	MsgInvalidBody   = "Corpo da requisição inválido."
	MsgUpdateFailed  = "Falha ao atualizar as notícias."
)

type askRequest struct {
	Question string `json:"pergunta"`
}

// ask answers a question sent as JSON or as a form.
func (s *Server) ask(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusBadRequest, gin.H{"erro": MsgUsePost})
		return
	}

	question, err := readQuestion(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"erro": MsgEmptyQuestion})
		return
	}

	answer, err := s.answerer.Answer(c.Request.Context(), question)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AskResponse{Question: question, Answer: answer.Answer, Sources: answer.Sources})
}

func readQuestion(c *gin.Context) (string, error) {
	if c.ContentType() != gin.MIMEJSON {
		return c.PostForm("pergunta"), nil
	}
	var req askRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		return "", &apperrors.Error{Kind: apperrors.KindValidation, Message: MsgInvalidBody, Err: err}
	}
	return req.Question, nil
}

// writeError renders a failed /ask/. With ExposeErrors the raw error goes back with
// 400; otherwise the status follows the error kind and only a fixed message is sent.
func (s *Server) writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	if s.opts.ExposeErrors {
		c.JSON(http.StatusBadRequest, gin.H{"erro": err.Error()})
		return
	}
	c.JSON(apperrors.StatusCode(apperrors.KindOf(err)), gin.H{"erro": apperrors.PublicMessage(err)})
}

// chat renders the chat page and handles its form posts.
func (s *Server) chat(c *gin.Context) {
	ctx := c.Request.Context()
	id := s.sessionID(c)
	thinking := false

	if c.Request.Method == http.MethodPost {
		if _, ok := c.GetPostForm("clear"); ok {
			if err := s.sessions.Clear(ctx, id); err != nil {
				s.chatFailed(c, err)
				return
			}
		} else if question := c.PostForm("pergunta"); question != "" {
			if err := s.sessions.Append(ctx, id, models.ChatMessage{Sender: models.SenderUser, Text: question}); err != nil {
				s.chatFailed(c, err)
				return
			}
			thinking = true
			if err := s.sessions.Append(ctx, id, s.botMessage(c, question)); err != nil {
				s.chatFailed(c, err)
				return
			}
		}
	}

	messages, err := s.sessions.History(ctx, id)
	if err != nil {
		s.chatFailed(c, err)
		return
	}
	c.HTML(http.StatusOK, "chat.html", gin.H{"Messages": messages, "Thinking": thinking})
}

// botMessage answers question for the chat page. Failures become the bot's reply.
func (s *Server) botMessage(c *gin.Context, question string) models.ChatMessage {
	answer, err := s.answerer.Answer(c.Request.Context(), question)
	if err != nil {
		_ = c.Error(err)
		text := apperrors.PublicMessage(err)
		if s.opts.ExposeErrors {
			text = err.Error()
		}
		return models.ChatMessage{Sender: models.SenderBot, Text: text}
	}
	return models.ChatMessage{Sender: models.SenderBot, Text: answer.Answer, Sources: answer.Sources}
}

func (s *Server) chatFailed(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, apperrors.MsgInternal)
}

// sessionID returns the visitor's session ID, issuing a new cookie when it is
// missing or malformed.
func (s *Server) sessionID(c *gin.Context) string {
	id, err := c.Cookie(s.opts.CookieName)
	if err != nil || uuid.Validate(id) != nil {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(s.opts.CookieName, id, int(s.opts.CookieTTL.Seconds()), "/", "", false, true)
	}
	c.Set("sessionID", id)
	return id
}

// updateNews runs the daily collection. ?teste=1 switches to test mode.
func (s *Server) updateNews(c *gin.Context) {
	testMode := c.Query("teste") == "1"

	// The crawl persists articles one by one, so it outlives a disconnected client.
	ctx := context.WithoutCancel(c.Request.Context())
	articles, err := s.collector.Collect(ctx, collector.DailyQuery, testMode)
	if err != nil {
		_ = c.Error(err)
		msg := MsgUpdateFailed
		if s.opts.ExposeErrors {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "erro", "mensagem": msg})
		return
	}

	if articles == nil {
		articles = []models.Article{}
	}
	resp := models.UpdateNewsResponse{Status: "sucesso", TestMode: testMode, Count: len(articles)}
	if testMode {
		resp.Articles = articles
	} else {
		titles := make([]string, len(articles))
		for i, a := range articles {
			titles[i] = a.Title
		}
		resp.Articles = titles
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) healthz(c *gin.Context) {
	body := gin.H{"status": "ok", "rag": s.answerer.State().String(), "sessions": "ok"}
	if err := s.sessions.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		body["status"] = "degraded"
		body["sessions"] = "error"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
