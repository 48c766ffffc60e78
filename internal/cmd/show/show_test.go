package show

import (
	"bytes"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_run(t *testing.T) {
	testCases := []struct {
		format  string
		wantErr assert.ErrorAssertionFunc
		want    string
	}{
		{format: "json", wantErr: assert.NoError, want: `{
  "Credentials": [
    {
      "Name": "default",
      "Secret": "**********"
    }
  ],
  "Webhooks": [
    {
      "Name": "default",
      "Secret": "**********"
    }
  ]
}
`},
		{format: "yaml", wantErr: assert.NoError},
		{format: "xml", wantErr: assert.Error},
	}

	for _, tt := range testCases {
		t.Run(tt.format, func(t *testing.T) {
			v := viper.New()
			v.Set("slack.token", "xoxb-1234")
			v.Set("slack.webhook", "https://hooks.slack.com/services/T0000/B0000/XXXXXXXX")
			v.Set("show.format", tt.format)
			t.Chdir(t.TempDir())

			var out bytes.Buffer
			err := run(&out, v)(nil, nil)
			tt.wantErr(t, err)
			if err != nil {
				return
			}
			assert.NotContains(t, out.String(), "xoxb-1234")
			assert.NotContains(t, out.String(), "hooks.slack.com")
			if tt.want != "" {
				require.Equal(t, tt.want, out.String())
			}
		})
	}
}
