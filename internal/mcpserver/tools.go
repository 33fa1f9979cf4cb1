package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/answer-cli/internal/model"
	"github.com/sells-group/answer-cli/internal/pipeline"
)

// AnswerInput is the input schema for the answer_question tool.
type AnswerInput struct {
	Question  string           `json:"question" jsonschema:"the user question to answer"`
	Context   string           `json:"context,omitempty" jsonschema:"optional pre-rendered candidate list for the selection stage"`
	Documents []model.Document `json:"documents" jsonschema:"candidate documents; doc_id must look like 12_3"`
}

// AnswerOutput is the output schema for the answer_question tool.
type AnswerOutput struct {
	RunID            string            `json:"run_id"`
	Answer           model.FinalAnswer `json:"answer"`
	CitedDocumentIDs []string          `json:"cited_document_ids,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer_question",
		Description: "Answer a question from the supplied documents: select relevant documents, extract cited facts, and synthesize a titled answer with sources",
	}, s.handleAnswer)
}

func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	run, err := s.svc.Answer(ctx, pipeline.Request{
		Question:  input.Question,
		Context:   input.Context,
		Documents: input.Documents,
	})
	if err != nil {
		if run != nil {
			return nil, AnswerOutput{}, eris.Wrapf(err, "mcpserver: run %s", run.ID)
		}
		return nil, AnswerOutput{}, err
	}

	return nil, AnswerOutput{
		RunID:            run.ID,
		Answer:           run.Result.Answer,
		CitedDocumentIDs: run.Result.CitedDocumentIDs,
	}, nil
}
