package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikogura/portfolio-assistant/pkg/resume"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

//nolint:gochecknoglobals // Cobra boilerplate
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the persona system prompt",
	Long: `Print the system prompt the chat endpoint sends to the model, built from the
loaded portfolio document.`,
	Args: cobra.NoArgs,
	RunE: runPrompt,
}

//nolint:gochecknoglobals // Cobra boilerplate
var toolCmd = &cobra.Command{
	Use:   "tool [name]",
	Short: "List tools or print a tool result",
	Long: `Without arguments, list the tool declarations offered to the model.
With a tool name, print the JSON that tool returns for the loaded portfolio.

Example:
  portfolio-assistant tool
  portfolio-assistant tool getProjects`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTool,
}

//nolint:gochecknoglobals // Cobra boilerplate
var presetCmd = &cobra.Command{
	Use:   "preset [question]",
	Short: "List preset questions or print a preset reply",
	Long: `Without arguments, list the suggested question groups. With a question,
print the canned reply and tool result served instead of a model call.

Example:
  portfolio-assistant preset "Who are you?"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreset,
}

//nolint:gochecknoglobals // Cobra boilerplate
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Inspect the configured resume file",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(resumeCmd)
}

func commandContext() (ctx context.Context, cancel context.CancelFunc) {
	ctx, cancel = context.WithTimeout(context.Background(), time.Minute)
	return ctx, cancel
}

func printJSON(v any) (err error) {
	var data []byte
	data, err = json.Marshal(v)
	if err != nil {
		err = errors.Wrap(err, "failed to encode output")
		return err
	}
	fmt.Print(string(pretty.Pretty(data)))
	return err
}

func runPrompt(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := commandContext()
	defer cancel()

	var a *app
	a, err = newApp(ctx)
	if err != nil {
		return err
	}

	fmt.Println(a.parser.SystemPrompt())
	return err
}

func runTool(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := commandContext()
	defer cancel()

	var a *app
	a, err = newApp(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		err = printJSON(a.catalog.Definitions())
		return err
	}

	var output json.RawMessage
	output, err = a.catalog.Invoke(ctx, args[0], nil)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			err = errors.Wrapf(err, "available tools: %v", tools.Names())
		}
		return err
	}

	fmt.Print(string(pretty.Pretty(output)))
	return err
}

func runPreset(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := commandContext()
	defer cancel()

	var a *app
	a, err = newApp(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		err = printJSON(a.parser.SuggestedQuestions())
		return err
	}

	reply, found := a.parser.Preset(args[0])
	if !found {
		err = errors.Errorf("no preset reply for %q", args[0])
		return err
	}

	fmt.Println(reply.Reply)

	if getVerbose() {
		fmt.Printf("Tool: %s\n", reply.Tool)
	}

	var output json.RawMessage
	output, err = a.catalog.Invoke(ctx, string(reply.Tool), nil)
	if err != nil {
		return err
	}

	fmt.Print(string(pretty.Pretty(output)))
	return err
}

func runResume(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := commandContext()
	defer cancel()

	var a *app
	a, err = newApp(ctx)
	if err != nil {
		return err
	}

	if a.store == nil {
		err = resume.ErrNotConfigured
		return err
	}

	data, name, err := a.store.Fetch(ctx)
	if err != nil {
		return err
	}

	var info resume.Info
	info, err = resume.Inspect(name, data)
	if err != nil {
		err = errors.Wrapf(err, "failed to inspect %s", a.store.Location())
		return err
	}

	fmt.Printf("Location: %s\n", a.store.Location())
	fmt.Printf("Type: %s\n", info.FileType)
	fmt.Printf("Size: %s\n", info.SizeLabel)
	if info.Pages > 0 {
		fmt.Printf("Pages: %d\n", info.Pages)
	}
	fmt.Printf("Words: %d\n", info.Words)

	return err
}
