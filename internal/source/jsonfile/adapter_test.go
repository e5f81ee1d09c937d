package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/source"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantIDs []string
	}{
		{
			name:    "array",
			data:    `[{"id":"1","date":"Mon, 19 Oct 2026 09:00:00 +0000","from":"a@x","subject":"s","snippet":"hi"},{"id":"2","date":"d","from":"b@x","subject":""}]`,
			wantIDs: []string{"1", "2"},
		},
		{
			name: "json lines with blank line",
			data: `{"id":"1","date":"d","from":"a@x","subject":"s"}` + "\n\n" +
				`{"id":"2","date":"d","from":"b@x","subject":"t","body":"full"}` + "\n",
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "empty",
			data:    "  \n",
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := Decode([]byte(tt.data), "test.json")
			require.NoError(t, err)
			ids := make([]string, 0, len(msgs))
			for _, m := range msgs {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDecode_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{"no id", `[{"date":"d","from":"a","subject":"s"}]`, "id"},
		{"empty from", `[{"id":"1","date":"d","from":"","subject":"s"}]`, "from"},
		{"no subject key", `{"id":"1","date":"d","from":"a"}`, "subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), "test.json")
			require.Error(t, err)

			var mfErr *model.MissingFieldError
			require.ErrorAs(t, err, &mfErr)
			assert.Equal(t, tt.wantField, mfErr.Field)
			assert.Equal(t, "test.json record 0", mfErr.Record)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"id":`), "bad.jsonl")
	assert.ErrorContains(t, err, "bad.jsonl line 1")
}

func TestAdapter_FetchMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`[{"id":"1","date":"d","from":"a@x","subject":"s1"},`+
			`{"id":"2","date":"d","from":"b@x","subject":"s2"},`+
			`{"id":"3","date":"d","from":"c@x","subject":"s3"}]`), 0o600))

	a := NewAdapter(path, "json-0", nil)
	assert.Equal(t, source.SourceTypeJSON, a.Type())

	_, err := a.ValidateConnection(context.Background())
	require.NoError(t, err)

	res, err := a.FetchMessages(context.Background(), source.FetchOptions{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "3", res.Messages[0].ID)
	assert.Equal(t, 3, res.Total)
	assert.False(t, res.HasMore)
}

func TestAdapter_MissingFile(t *testing.T) {
	a := NewAdapter(filepath.Join(t.TempDir(), "nope.json"), "json-0", nil)

	_, err := a.FetchMessages(context.Background(), source.FetchOptions{})
	assert.True(t, source.IsDecodeError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = a.ValidateConnection(context.Background())
	assert.Error(t, err)
}
