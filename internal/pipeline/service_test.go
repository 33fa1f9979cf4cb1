package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/answer-cli/internal/llm"
	"github.com/sells-group/answer-cli/internal/model"
	"github.com/sells-group/answer-cli/internal/prompt"
)

func happyCompleter() llm.Completer {
	return llm.CompleterFunc(func(_ context.Context, p string) (string, error) {
		switch {
		case strings.HasPrefix(p, prompt.Selection):
			return "1_1, 2_1", nil
		case strings.HasPrefix(p, prompt.Extraction):
			return "[P2 fact, 2_1]\n[P1 fact, 1_1]\n[more, 2_1]", nil
		default:
			return synthesisReply("T", "Answer", "2_1, 1_1"), nil
		}
	})
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{name: "valid", req: Request{Question: "q", Documents: testDocs()}},
		{name: "no documents", req: Request{Question: "q"}},
		{name: "blank question", req: Request{Question: "  ", Documents: testDocs()}, wantErr: true},
		{name: "bad id", req: Request{Question: "q", Documents: []model.Document{{ID: "doc-1"}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_Answer_NoStore(t *testing.T) {
	svc := NewService(happyCompleter(), echoRenderer{}, nil, nil)

	run, err := svc.Answer(context.Background(), Request{Question: "q", Documents: testDocs()})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, []string{"1_1", "2_1"}, run.Input.DocumentIDs)
	require.NotNil(t, run.Result)
	assert.Equal(t, []string{"2_1", "1_1"}, run.Result.Answer.SourceDocumentIDs)
	assert.Equal(t, []string{"1_1", "2_1"}, run.Result.CitedDocumentIDs)
	assert.Len(t, run.Result.Stages, 3)
}

func TestService_Answer_RecordsRun(t *testing.T) {
	ctx := context.Background()
	req := Request{Question: "q", Documents: testDocs()}

	st := &mockStore{}
	st.On("CreateRun", ctx, req.input()).Return(&model.Run{ID: "run-1", Input: req.input(), Status: model.RunStatusQueued}, nil)
	for _, status := range []model.RunStatus{model.RunStatusSelecting, model.RunStatusExtracting, model.RunStatusSynthesizing} {
		st.On("UpdateRunStatus", ctx, "run-1", status).Return(nil).Once()
	}
	st.On("CompleteRun", ctx, "run-1", mock.MatchedBy(func(r *model.RunResult) bool {
		return r.Answer.Title == "T" && len(r.CitedDocumentIDs) == 2
	})).Return(nil)

	svc := NewService(happyCompleter(), echoRenderer{}, nil, st)
	run, err := svc.Answer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	st.AssertExpectations(t)
}

func TestService_Answer_StatusUpdateFailureIsNotFatal(t *testing.T) {
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).Return(&model.Run{ID: "run-1"}, nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", mock.Anything).Return(errors.New("db busy"))
	st.On("CompleteRun", mock.Anything, "run-1", mock.Anything).Return(nil)

	svc := NewService(happyCompleter(), echoRenderer{}, nil, st)
	run, err := svc.Answer(context.Background(), Request{Question: "q", Documents: testDocs()})
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
}

func TestService_Answer_PipelineFailureFailsRun(t *testing.T) {
	boom := errors.New("rate limited")
	c := llm.CompleterFunc(func(context.Context, string) (string, error) { return "", boom })

	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).Return(&model.Run{ID: "run-1"}, nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", model.RunStatusSelecting).Return(nil)
	st.On("FailRun", mock.Anything, "run-1", mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	svc := NewService(c, echoRenderer{}, nil, st)
	run, err := svc.Answer(context.Background(), Request{Question: "q", Documents: testDocs()})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, run)
	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "rate limited")
	assert.Nil(t, run.Result)
	st.AssertExpectations(t)
	st.AssertNotCalled(t, "CompleteRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Answer_CompleteRunFailureFailsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).Return(&model.Run{ID: "run-1"}, nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", mock.Anything).Return(nil)
	st.On("CompleteRun", mock.Anything, "run-1", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(errors.New("disk full"))
	st.On("FailRun", mock.MatchedBy(func(c context.Context) bool {
		return c.Err() == nil
	}), "run-1", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "disk full")
	})).Return(nil)

	svc := NewService(happyCompleter(), echoRenderer{}, nil, st)
	run, err := svc.Answer(ctx, Request{Question: "q", Documents: testDocs()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complete run")
	require.NotNil(t, run)
	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "disk full")
	assert.Nil(t, run.Result)
	st.AssertExpectations(t)
}

func TestService_Answer_InvalidRequest(t *testing.T) {
	st := &mockStore{}
	svc := NewService(happyCompleter(), echoRenderer{}, nil, st)

	run, err := svc.Answer(context.Background(), Request{Question: ""})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Nil(t, run)
	st.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
}

func TestService_Answer_CreateRunError(t *testing.T) {
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	svc := NewService(happyCompleter(), echoRenderer{}, nil, st)
	_, err := svc.Answer(context.Background(), Request{Question: "q", Documents: testDocs()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create run")
}

func TestService_Answer_Concurrent(t *testing.T) {
	svc := NewService(happyCompleter(), echoRenderer{}, nil, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Answer(context.Background(), Request{Question: "q", Documents: testDocs()})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
