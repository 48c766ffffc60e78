package post

import (
	"errors"
	"fmt"
	"github.com/clambin/go-common/charmer"
	"github.com/clambin/go-common/set"
	"github.com/clambin/slack-blocks/internal/cmd/cli"
	"github.com/clambin/slack-blocks/internal/notifier"
	"github.com/clambin/slack-blocks/pkg/messages"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"os"
	"strings"
)

var (
	Cmd = cobra.Command{
		Use:   "post [flags] message",
		Short: "Post a message with a bot token",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run(os.Stdout, viper.GetViper()),
	}

	args = charmer.Arguments{
		"post.credentials": {Default: cli.DefaultBlock, Help: "Credentials to post with"},
		"post.channel":     {Default: "", Help: "Channel ID or name to post to"},
		"post.broadcast":   {Default: false, Help: "Post to every channel the bot has joined"},
		"post.channels":    {Default: "", Help: "With --post.broadcast, only post to these channels (comma-separated)"},
		"post.header":      {Default: "", Help: "Add a section with this header"},
		"post.fields":      {Default: "", Help: "Fields of the section (comma-separated)"},
	}
)

func init() {
	_ = charmer.SetPersistentFlags(&Cmd, viper.GetViper(), args)
}

func run(w io.Writer, v *viper.Viper) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, err := cli.Registry(v)
		if err != nil {
			return err
		}
		creds, err := r.Credentials(v.GetString("post.credentials"))
		if err != nil {
			return err
		}
		var options []slack.Option
		if apiURL := v.GetString("slack.apiURL"); apiURL != "" {
			options = append(options, slack.OptionAPIURL(apiURL))
		}
		api := creds.GetClient(options...)
		text := strings.Join(args, " ")

		if v.GetBool("post.broadcast") {
			n := notifier.ChannelNotifier{
				Logger:      charmer.GetLogger(cmd).With("component", "post"),
				Channels:    set.New(split(v.GetString("post.channels"))...),
				SlackSender: api,
			}
			return n.Notify(cmd.Context(), text, v.GetString("post.header"))
		}

		channel := v.GetString("post.channel")
		if channel == "" {
			return errors.New("no channel: set --post.channel or --post.broadcast")
		}
		msg := messages.Message{Text: text}
		if header := v.GetString("post.header"); header != "" {
			msg.Sections = append(msg.Sections, messages.Section{Header: header, Body: split(v.GetString("post.fields"))})
		}
		ts, err := messages.SendChatMessage(cmd.Context(), api, channel, msg)
		if err == nil {
			_, _ = fmt.Fprintln(w, ts)
		}
		return err
	}
}

func split(list string) []string {
	var items []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
