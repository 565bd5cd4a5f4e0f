package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"portfolio-site/internal/client"
	"portfolio-site/internal/domain"
)

var (
	contactServer  string
	contactName    string
	contactEmail   string
	contactPhone   string
	contactSubject string
	contactMessage string
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a contact form submission through the site API",
	Long: `Post a contact form submission to a running site API. Useful to check
mail delivery end to end; in sandbox mode the preview URLs are printed.

Examples:
  portfolio contact --name Ada --email ada@example.com --subject Hello --message "Hi there"
  portfolio contact --server https://gloire.dev --name Ada ...`,
	Args: cobra.NoArgs,
	RunE: runContact,
}

func init() {
	contactCmd.Flags().StringVar(&contactServer, "server", "", "site API base URL (default BASE_URL)")
	contactCmd.Flags().StringVar(&contactName, "name", "", "sender name")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "sender email")
	contactCmd.Flags().StringVar(&contactPhone, "phone", "", "sender phone (optional)")
	contactCmd.Flags().StringVar(&contactSubject, "subject", "", "message subject")
	contactCmd.Flags().StringVarP(&contactMessage, "message", "m", "", "message body")
}

func runContact(cmd *cobra.Command, args []string) error {
	server := contactServer
	if server == "" {
		server = cfg.BaseURL
	}
	c, err := client.New(server)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	t := defaultTheme
	res, err := c.Contact(cmd.Context(), domain.ContactSubmission{
		Name:    contactName,
		Email:   contactEmail,
		Phone:   contactPhone,
		Subject: contactSubject,
		Message: contactMessage,
	})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			fmt.Fprintln(out, t.errorStyle().Render(apiErr.Message))
			fields := make([]string, 0, len(apiErr.Fields))
			for f := range apiErr.Fields {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				fmt.Fprintf(out, "  %s: %s\n", f, apiErr.Fields[f])
			}
		}
		return err
	}

	fmt.Fprintln(out, t.successStyle().Render(res.Message))
	if res.Error != "" {
		fmt.Fprintln(out, t.hintStyle().Render("delivery error: "+res.Error))
	}
	if res.PreviewURLs != nil {
		fmt.Fprintf(out, "  owner preview:  %s\n", res.PreviewURLs.Owner)
		fmt.Fprintf(out, "  sender preview: %s\n", res.PreviewURLs.Sender)
	}
	return nil
}
