package flagx

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash-starting token is not a value",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "several allowed flags keep their order",
			args:         []string{"-a", ":8080", "-c", "conf.json", "--other", "x", "-policy=cascade"},
			allowedFlags: []string{"-c", "-a", "-policy"},
			want:         []string{"-a", ":8080", "-c", "conf.json", "-policy=cascade"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", JsonConfigFlags())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1"}
		assert.Empty(t, JsonConfigFlags())
	})
}

func TestEnv(t *testing.T) {
	vars := map[string]string{
		"S":       " value ",
		"B":       "true",
		"B_BAD":   "maybe",
		"I":       "12",
		"I_NEG":   "-3",
		"D":       "90s",
		"D_BAD":   "later",
		"BLANK":   "   ",
	}
	env := Env{Lookup: func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}}

	s := "def"
	env.String("S", &s)
	assert.Equal(t, "value", s)

	blank := "keep"
	env.String("BLANK", &blank)
	env.String("MISSING", &blank)
	assert.Equal(t, "keep", blank)

	b := false
	env.Bool("B", &b)
	assert.True(t, b)
	env.Bool("B_BAD", &b)
	assert.True(t, b)

	n := 4
	env.Int("I_NEG", &n)
	assert.Equal(t, 4, n)
	env.Int("I", &n)
	assert.Equal(t, 12, n)

	d := time.Minute
	env.Duration("D_BAD", &d)
	assert.Equal(t, time.Minute, d)
	env.Duration("D", &d)
	assert.Equal(t, 90*time.Second, d)
}

func TestEnv_NilLookup(t *testing.T) {
	s := "x"
	Env{}.String("ANY", &s)
	assert.Equal(t, "x", s)
}
