package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/answer-cli/internal/config"
	"github.com/sells-group/answer-cli/internal/model"
	"github.com/sells-group/answer-cli/internal/pipeline"
)

var (
	answerQuestion string
	answerDocs     string
	answerContext  string
	answerNoStore  bool
)

var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Answer one question against a document file",
	Long:  "Reads candidate documents from a JSON file (or - for stdin), runs the select, extract and synthesize stages, and prints the run as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		docs, err := readDocuments(answerDocs, cmd.InOrStdin())
		if err != nil {
			return err
		}

		env, err := initService(ctx, config.ModeAnswer, answerNoStore)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := runAnswer(ctx, env.Service, pipeline.Request{
			Question:  answerQuestion,
			Context:   answerContext,
			Documents: docs,
		})
		if run != nil {
			if encErr := writeJSON(cmd.OutOrStdout(), run); encErr != nil {
				return encErr
			}
		}
		return err
	},
}

func init() {
	answerCmd.Flags().StringVar(&answerQuestion, "question", "", "question to answer (required)")
	answerCmd.Flags().StringVar(&answerDocs, "docs", "", "JSON file with the candidate documents, - for stdin (required)")
	answerCmd.Flags().StringVar(&answerContext, "context", "", "pre-rendered candidate list for the selection stage")
	answerCmd.Flags().BoolVar(&answerNoStore, "no-store", false, "do not record the run")
	_ = answerCmd.MarkFlagRequired("question")
	_ = answerCmd.MarkFlagRequired("docs")
	rootCmd.AddCommand(answerCmd)
}

// answerer is the part of pipeline.Service the commands depend on.
type answerer interface {
	Answer(ctx context.Context, req pipeline.Request) (*model.Run, error)
}

func runAnswer(ctx context.Context, svc answerer, req pipeline.Request) (*model.Run, error) {
	run, err := svc.Answer(ctx, req)
	if err != nil {
		return run, eris.Wrap(err, "answer")
	}
	return run, nil
}

// readDocuments reads the documents from path. The payload is either a JSON
// array of documents or an object with a "documents" array.
func readDocuments(path string, stdin io.Reader) ([]model.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrap(err, "read documents")
	}
	return decodeDocuments(data)
}

func decodeDocuments(data []byte) ([]model.Document, error) {
	var docs []model.Document
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}

	var wrapped struct {
		Documents []model.Document `json:"documents"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, eris.Wrap(err, "decode documents")
	}
	return wrapped.Documents, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
