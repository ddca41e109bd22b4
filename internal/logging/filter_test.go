package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greg-randall/prmptr/internal/testutil"
)

// Secret-shaped strings are assembled at runtime so secret scanners do
// not flag the test file itself. None of these are real credentials.
func testOpenAIKey() string    { return "sk-" + "PRMPTRTESTKEY" + "0123456789A" }
func testProjectKey() string   { return "sk-proj-" + "prmptrTESTproj0001" }
func testAnthropicKey() string { return "sk-ant-api" + "03-prmptr-test-0001" }
func testBearerToken() string  { return "prmptrtest" + "token12345678" }
func testPassword() string     { return "hunter2" + "prmptr001" }

func TestContainsSensitiveData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		// Provider key shapes, as they would appear inside a chain input
		// file or a substituted prompt.
		{"openai key in prompt", "Summarize: my key is " + testOpenAIKey(), true},
		{"project key assignment", "OPENAI_API_KEY=" + testProjectKey(), true},
		{"anthropic key", "the command wraps a CLI using " + testAnthropicKey(), true},
		{"sk prefix too short", "sk-short", false},
		{"sk prefix alone", "sk-", false},

		// Assignment shapes.
		{"api_key assignment", `api_key = "prmptrtestvalue12345"`, true},
		{"bearer token", "Authorization: Bearer " + testBearerToken(), true},
		{"password assignment", `password = "` + testPassword() + `"`, true},
		{"secret assignment", "secret: prmptrtestsecret99", true},

		// Ordinary prmptr log content must pass untouched.
		{"chain progress message", "resolving [[summary]] (3 deps)", false},
		{"file message", "loading chain file from disk", false},
		{"empty string", "", false},
		{"whitespace only", "   \t\n  ", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ContainsSensitiveData(tc.input))
		})
	}
}

func TestFilterSensitiveValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "key inside prompt text",
			input: "Rewrite this note: my key is " + testOpenAIKey() + " please",
			want:  "Rewrite this note: my key is [REDACTED] please",
		},
		{
			name:  "project key",
			input: "key: " + testProjectKey(),
			want:  "key: [REDACTED]",
		},
		{
			name:  "two keys in one prompt",
			input: "key1: " + testOpenAIKey() + ", key2: " + testAnthropicKey(),
			want:  "key1: [REDACTED], key2: [REDACTED]",
		},
		{
			name:  "password assignment swallowed whole",
			input: `config: password = "` + testPassword() + `"`,
			want:  `config: [REDACTED]`,
		},
		{
			name:  "clean prompt unchanged",
			input: "Summarize the article in three sentences.",
			want:  "Summarize the article in three sentences.",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FilterSensitiveValue(tc.input))
		})
	}
}

func TestIsSensitiveFieldName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field string
		want  bool
	}{
		// Exact entries, case-insensitive.
		{"api_key", true},
		{"API_KEY", true},
		{"apikey", true},
		{"password", true},
		{"secret", true},
		{"access_token", true},
		{"authorization", true},
		{"openai_api_key", true},

		// Separator-bounded compounds.
		{"provider_api_key", true},
		{"password_hash", true},
		{"db_password", true},
		{"secret-value", true},
		{"my_secret_value", true},
		{"app-secret-key", true},
		{"my_password-field", true},

		// Fields prmptr actually logs.
		{"fragment", false},
		{"run_id", false},
		{"chain_file", false},
		{"prompt_len", false},
		{"duration_ms", false},

		// Bare substrings without a boundary.
		{"secretariat", false},
		{"passwords", false},
		{"mypassword", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.field, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsSensitiveFieldName(tc.field))
		})
	}
}

func TestHasBoundedWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		word string
		want bool
	}{
		{"leading underscore", "password_hash", "password", true},
		{"leading dash", "password-hash", "password", true},
		{"trailing underscore", "db_password", "password", true},
		{"trailing dash", "db-password", "password", true},
		{"interior", "my_password_field", "password", true},
		{"interior mixed separators", "my-password_field", "password", true},
		{"trailing separator only", "password_", "password", true},
		{"equality is not a boundary", "password", "password", false},
		{"substring without separator", "mypassword", "password", false},
		{"empty name", "", "password", false},
		{"empty word", "password", "", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, hasBoundedWord(tc.in, tc.word))
		})
	}
}

func TestRedactIfSensitive(t *testing.T) {
	t.Parallel()

	// A secret field name drops the whole value, even a harmless one.
	assert.Equal(t, RedactedValue, RedactIfSensitive("api_key", "not-actually-secret"))
	assert.Equal(t, RedactedValue, RedactIfSensitive("password", "x"))

	// An ordinary field keeps its value but is pattern-filtered.
	assert.Equal(t, "summary", RedactIfSensitive("fragment", "summary"))
	assert.Equal(t, "key: [REDACTED]",
		RedactIfSensitive("prompt_preview", "key: "+testOpenAIKey()))
}

func TestSafeValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RedactedValue, SafeValue("api_key", "whatever"))
	assert.Equal(t, "summary", SafeValue("fragment", "summary"))
}

func TestSensitiveDataHook(t *testing.T) {
	t.Parallel()

	t.Run("flags events whose message holds a secret", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := zerolog.New(&buf).Hook(NewSensitiveDataHook())

		logger.Info().Msg("using key " + testOpenAIKey())

		// The hook can only mark the event; the FilteringWriter wrapping
		// the file output performs the redaction itself.
		assert.Contains(t, buf.String(), "contains_filtered_data")
	})

	t.Run("leaves clean events alone", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := zerolog.New(&buf).Hook(NewSensitiveDataHook())

		logger.Info().Msg("chain run completed")

		assert.NotContains(t, buf.String(), "contains_filtered_data")
	})
}

func TestFilteringWriter_RedactsLogLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantPresent []string
		wantAbsent  []string
	}{
		{
			name:        "key in message field",
			input:       `{"level":"info","message":"using key ` + testOpenAIKey() + `"}`,
			wantPresent: []string{`"level":"info"`, RedactedValue},
			wantAbsent:  []string{"sk-" + "PRMPTRTESTKEY"},
		},
		{
			name:        "project key in field value",
			input:       `{"level":"info","key":"` + testProjectKey() + `"}`,
			wantPresent: []string{`"level":"info"`, RedactedValue},
			wantAbsent:  []string{"sk-proj-" + "prmptrTESTproj"},
		},
		{
			name:        "two keys on one line",
			input:       `{"key1":"` + testOpenAIKey() + `","key2":"` + testAnthropicKey() + `"}`,
			wantPresent: []string{RedactedValue},
			wantAbsent:  []string{"sk-" + "PRMPTRTESTKEY", "sk-ant-api" + "03"},
		},
		{
			name:        "clean line unchanged",
			input:       `{"level":"info","message":"chain run completed"}`,
			wantPresent: []string{"chain run completed"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			fw := NewFilteringWriter(&buf)

			n, err := fw.Write([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, len(tc.input), n, "reported length must stay the original")

			out := buf.String()
			for _, s := range tc.wantPresent {
				assert.Contains(t, out, s)
			}
			for _, s := range tc.wantAbsent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestFilteringWriter_UnderZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(NewFilteringWriter(&buf))

	logger.Info().Msg("connecting with key " + testOpenAIKey())

	out := buf.String()
	assert.NotContains(t, out, "sk-"+"PRMPTRTESTKEY")
	assert.Contains(t, out, RedactedValue)
	assert.Contains(t, out, "connecting with key")
}

// failingWriter rejects every write.
type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestFilteringWriter_PropagatesWriteError(t *testing.T) {
	t.Parallel()

	fw := NewFilteringWriter(failingWriter{err: testutil.ErrMockFileNotFound})

	n, err := fw.Write([]byte("anything"))
	require.ErrorIs(t, err, testutil.ErrMockFileNotFound)
	assert.Zero(t, n)
}
