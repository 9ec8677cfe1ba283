package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"engage-api/internal/dashboard"
	"engage-api/internal/domain"
	"engage-api/internal/integrations/ticketsvc"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// apiClientEnv são os defaults do cliente; flags têm precedência.
type apiClientEnv struct {
	URL   string `env:"ENGAGE_API_URL" envDefault:"http://localhost:8080"`
	Token string `env:"ENGAGE_API_TOKEN"`
}

var ticketFlags struct {
	apiURL    string
	token     string
	companyID string
	actorID   string
	internal  bool
}

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Work tickets through a running API",
	Long: `Operate on tickets the way the dashboard does: every action is validated locally,
sent to the API, and only reflected after the API confirms it.

With an S2S token pass --actor so X-Company-Id/X-Actor-Id are sent.`,
}

var ticketShowCmd = &cobra.Command{
	Use:   "show <ticketId>",
	Short: "Print a ticket with notes and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := openTicketView(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), view.Ticket())
	},
}

var ticketStatusCmd = &cobra.Command{
	Use:   "status <ticketId> <status>",
	Short: "Change ticket status (new, open, in_progress, resolved, closed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatchTicket(cmd, args[0], domain.UpdateStatus{Status: domain.TicketStatus(args[1])})
	},
}

var ticketPriorityCmd = &cobra.Command{
	Use:   "priority <ticketId> <priority>",
	Short: "Change ticket priority (low, medium, high, critical)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatchTicket(cmd, args[0], domain.UpdatePriority{Priority: domain.TicketPriority(args[1])})
	},
}

var ticketAssignCmd = &cobra.Command{
	Use:   "assign <ticketId> [email]",
	Short: "Assign the ticket to a team member e-mail; omit the e-mail to unassign",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var assignee string
		if len(args) == 2 {
			assignee = args[1]
		}
		return dispatchTicket(cmd, args[0], domain.UpdateAssignment{Assignee: assignee})
	},
}

var ticketNoteCmd = &cobra.Command{
	Use:   "note <ticketId> <content>",
	Short: "Add a note to the ticket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatchTicket(cmd, args[0], domain.AddNote{Content: args[1], IsInternal: ticketFlags.internal})
	},
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "List assignable team members",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := newTicketBackend()
		if err != nil {
			return err
		}

		roster := dashboard.NewTeamRoster(backend, ticketFlags.companyID)
		switch roster.Load(cmd.Context()) {
		case dashboard.RosterError:
			return fmt.Errorf("failed to load team members: %w", roster.Err())
		case dashboard.RosterEmpty:
			fmt.Fprintln(cmd.OutOrStdout(), "no team members")
			return nil
		default:
			return printJSON(cmd.OutOrStdout(), roster.Members())
		}
	},
}

func init() {
	pf := ticketCmd.PersistentFlags()
	pf.StringVar(&ticketFlags.apiURL, "api-url", "", "API base URL (default $ENGAGE_API_URL or http://localhost:8080)")
	pf.StringVar(&ticketFlags.token, "token", "", "bearer token, JWT or S2S (default $ENGAGE_API_TOKEN)")
	pf.StringVar(&ticketFlags.companyID, "company", "", "company id")
	pf.StringVar(&ticketFlags.actorID, "actor", "", "actor id recorded in history; required with S2S tokens")
	_ = ticketCmd.MarkPersistentFlagRequired("company")

	ticketNoteCmd.Flags().BoolVar(&ticketFlags.internal, "internal", false, "internal note (not visible to the customer)")

	ticketCmd.AddCommand(ticketShowCmd, ticketStatusCmd, ticketPriorityCmd, ticketAssignCmd, ticketNoteCmd, teamCmd)
	rootCmd.AddCommand(ticketCmd)
}

func newTicketBackend() (*ticketsvc.Client, error) {
	var defaults apiClientEnv
	if err := env.Parse(&defaults); err != nil {
		return nil, fmt.Errorf("failed to read client environment: %w", err)
	}

	apiURL, token := defaults.URL, defaults.Token
	if ticketFlags.apiURL != "" {
		apiURL = ticketFlags.apiURL
	}
	if ticketFlags.token != "" {
		token = ticketFlags.token
	}
	if token == "" {
		return nil, errors.New("missing token: pass --token or set ENGAGE_API_TOKEN")
	}

	var opts []ticketsvc.Option
	if ticketFlags.actorID != "" {
		opts = append(opts, ticketsvc.WithActor(ticketFlags.actorID))
	}
	return ticketsvc.NewClient(apiURL, token, opts...), nil
}

func openTicketView(ctx context.Context, ticketID string) (*dashboard.TicketView, error) {
	backend, err := newTicketBackend()
	if err != nil {
		return nil, err
	}
	return dashboard.OpenTicket(ctx, backend, ticketFlags.companyID, ticketID, ticketFlags.actorID)
}

func dispatchTicket(cmd *cobra.Command, ticketID string, action domain.TicketCommand) error {
	view, err := openTicketView(cmd.Context(), ticketID)
	if err != nil {
		return err
	}

	if res := view.Dispatch(cmd.Context(), action); res.Err != nil {
		return fmt.Errorf("%s failed: %w", action.Name(), res.Err)
	}
	return printJSON(cmd.OutOrStdout(), view.Ticket())
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
