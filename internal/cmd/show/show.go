package show

import (
	"encoding/json"
	"fmt"
	"github.com/clambin/go-common/charmer"
	"github.com/clambin/slack-blocks/internal/blocks"
	"github.com/clambin/slack-blocks/internal/cmd/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

var (
	Cmd = cobra.Command{
		Use:   "blocks",
		Short: "Show the configured credentials and webhooks",
		RunE:  run(os.Stdout, viper.GetViper()),
	}

	args = charmer.Arguments{
		"show.format": {Default: "yaml", Help: "Output format (yaml or json)"},
	}
)

func init() {
	_ = charmer.SetPersistentFlags(&Cmd, viper.GetViper(), args)
}

func run(w io.Writer, v *viper.Viper) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		r, err := cli.Registry(v)
		if err != nil {
			return err
		}
		var e blocks.Encoder
		switch format := v.GetString("show.format"); format {
		case "yaml", "":
			e = yaml.NewEncoder(w)
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			e = enc
		default:
			return fmt.Errorf("invalid format: %q", format)
		}
		return blocks.Show(r, e)
	}
}
