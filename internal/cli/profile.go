package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"portfolio-site/internal/app"
	"portfolio-site/internal/profile"
	"portfolio-site/internal/repository"
)

var (
	profileFile    string
	profileHistory int
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect and publish the profile document",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved profile as YAML",
	Long: `Print the profile the site would load at startup: the DynamoDB document
when PROFILE_TABLE is set, else PROFILE_PATH, else the built-in default.`,
	Args: cobra.NoArgs,
	RunE: runProfileShow,
}

var profilePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Publish a YAML profile to the DynamoDB profile table",
	Long: `Validate a YAML profile and store it as the next revision in PROFILE_TABLE.

Examples:
  portfolio profile push --file profile.yaml`,
	Args: cobra.NoArgs,
	RunE: runProfilePush,
}

var profileHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored profile revisions",
	Args:  cobra.NoArgs,
	RunE:  runProfileHistory,
}

func init() {
	profilePushCmd.Flags().StringVarP(&profileFile, "file", "f", "", "YAML profile to publish")
	_ = profilePushCmd.MarkFlagRequired("file")
	profileHistoryCmd.Flags().IntVarP(&profileHistory, "limit", "n", 10, "max revisions to list")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profilePushCmd)
	profileCmd.AddCommand(profileHistoryCmd)
}

func profileStore(cmd *cobra.Command) (*repository.Client, error) {
	if cfg.ProfileTable == "" {
		return nil, errors.New("PROFILE_TABLE is not set")
	}
	return app.NewProfileStore(cmd.Context(), cfg.ProfileTable)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	loader := profile.Loader{ProfileID: cfg.ProfileID, Path: cfg.ProfilePath}
	if cfg.ProfileTable != "" {
		store, err := profileStore(cmd)
		if err != nil {
			return err
		}
		loader.Store = store
	}

	p, src, err := loader.Load(cmd.Context())
	if err != nil {
		return err
	}
	data, err := profile.Marshal(p)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# source: %s\n", src)
	_, err = out.Write(data)
	return err
}

func runProfilePush(cmd *cobra.Command, args []string) error {
	p, err := profile.LoadFile(profileFile)
	if err != nil {
		return err
	}
	store, err := profileStore(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	current, err := store.CurrentRevision(ctx, cfg.ProfileID)
	if err != nil {
		return err
	}
	rev, err := store.PutProfile(ctx, cfg.ProfileID, p, current)
	if err != nil {
		if errors.Is(err, repository.ErrRevisionConflict) {
			return fmt.Errorf("profile %q changed while publishing, retry: %w", cfg.ProfileID, err)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.successStyle().Render(
		fmt.Sprintf("Published profile %q revision %d", cfg.ProfileID, rev)))
	return nil
}

func runProfileHistory(cmd *cobra.Command, args []string) error {
	store, err := profileStore(cmd)
	if err != nil {
		return err
	}
	revs, err := store.ListRevisions(cmd.Context(), cfg.ProfileID, profileHistory)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(revs) == 0 {
		fmt.Fprintln(out, "No revisions stored.")
		return nil
	}
	fmt.Fprintf(out, "Revisions of %q (%d):\n\n", cfg.ProfileID, len(revs))
	for _, r := range revs {
		fmt.Fprintf(out, "- %d  %s\n", r.Number, r.UpdatedAt.Format("2006-01-02 15:04:05 UTC"))
	}
	return nil
}
