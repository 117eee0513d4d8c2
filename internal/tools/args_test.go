package tools

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArguments_String(t *testing.T) {
	args := Arguments{
		"name":   "Ada",
		"empty":  "",
		"null":   nil,
		"number": 42.0,
		"bool":   true,
		"jsonNo": json.Number("7"),
	}

	assert.Equal(t, "Ada", args.String("name"))
	assert.Equal(t, "", args.String("empty"))
	assert.Equal(t, "", args.String("null"))
	assert.Equal(t, "", args.String("absent"))
	assert.Equal(t, "42", args.String("number"))
	assert.Equal(t, "true", args.String("bool"))
	assert.Equal(t, "7", args.String("jsonNo"))
}

func TestArguments_Int(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int64
		wantErr bool
	}{
		{name: "absent", value: nil, want: 10},
		{name: "json float", value: 2.0, want: 2},
		{name: "int", value: 3, want: 3},
		{name: "int64", value: int64(4), want: 4},
		{name: "json number", value: json.Number("5"), want: 5},
		{name: "numeric string", value: " 6 ", want: 6},
		{name: "fractional", value: 2.5, wantErr: true},
		{name: "word", value: "many", wantErr: true},
		{name: "bool", value: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := Arguments{}
			if tt.value != nil {
				args["max_results"] = tt.value
			}
			got, err := args.Int("max_results", 10)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "max_results")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResult(t *testing.T) {
	ok := TextResult("a", "b")
	assert.False(t, ok.Failed())
	assert.Nil(t, ok.Failure())
	assert.Equal(t, []Block{{Text: "a"}, {Text: "b"}}, ok.Render())

	cause := errors.New("quota exceeded")
	failed := FailureResult("reading emails", cause)
	require.True(t, failed.Failed())
	assert.ErrorIs(t, failed.Failure(), cause)
	assert.Equal(t, []Block{{Text: "Error reading emails: quota exceeded"}}, failed.Render())
}

func TestSchema(t *testing.T) {
	s := ObjectSchema(map[string]Property{
		"b": {Type: TypeString},
		"a": {Type: TypeInteger, Default: 10},
	}, "b")

	assert.Equal(t, []string{"a", "b"}, s.PropertyNames())
	assert.True(t, s.IsRequired("b"))
	assert.False(t, s.IsRequired("a"))

	raw, err := s.MarshalRaw()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"a":{"type":"integer","default":10},"b":{"type":"string"}},"required":["b"]}`, string(raw))

	empty, err := ObjectSchema(nil).MarshalRaw()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{}}`, string(empty))
}
