package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_Constructors(t *testing.T) {
	t.Parallel()

	empty := SelectedIDs(nil)
	assert.False(t, empty.IsNoInformation())
	assert.NotNil(t, empty.IDs)
	assert.Empty(t, empty.IDs)

	assert.True(t, NoSelection().IsNoInformation())
	assert.Nil(t, NoSelection().IDs)
}

func TestExtraction_Constructors(t *testing.T) {
	t.Parallel()

	e := ExtractedRecords(nil)
	assert.Equal(t, KindData, e.Kind)
	assert.NotNil(t, e.Records)
	assert.True(t, NoExtraction().IsNoInformation())
}

func TestContext_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "block", TextContext("block").String())
	assert.Equal(t, "", TextContext("").String())

	c := NoInformationContext("nothing here")
	assert.True(t, c.IsNoInformation())
	assert.Equal(t, "nothing here", c.String())
}

func TestFinalAnswer_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewAnswer("T", "Answer", []string{"1_1"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"answer","title":"T","text":"Answer","source_docs":["1_1"]}`, string(data))

	data, err = json.Marshal(NewParseFailure("garbled"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"parse_failure","error":"Failed to parse the final answer.","raw_output":"garbled"}`, string(data))
}

func TestFinalAnswer_IsParseFailure(t *testing.T) {
	t.Parallel()

	assert.False(t, NewAnswer("T", "x", nil).IsParseFailure())
	assert.True(t, NewParseFailure("x").IsParseFailure())
	assert.Equal(t, []string{}, NewAnswer("T", "x", nil).SourceDocumentIDs)
}
