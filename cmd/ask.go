package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/navigator"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question without starting the server",
	Long:  `Runs the full resolution pipeline for one question and prints the reply and the source that produced it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().String("lang", "en", "response language: en or ml")
	askCmd.Flags().String("user", "cli", "caller id recorded in history")
	askCmd.Flags().Bool("json", false, "print the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	language, _ := cmd.Flags().GetString("lang")
	user, _ := cmd.Flags().GetString("user")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.resolver.Resolve(ctx, navigator.Query{
		Message:  args[0],
		UserID:   user,
		Language: lang.Parse(language),
	})
	if err != nil {
		return fmt.Errorf("resolving question: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"reply":     res.Reply,
			"source":    res.Source,
			"language":  res.Language,
			"serviceId": res.ServiceID,
			"lifeEvent": res.LifeEvent,
		})
	}

	fmt.Println(res.Reply)
	fmt.Printf("\n[source: %s]\n", res.Source)
	return nil
}
