package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/hiretrack/hiretrack/internal/api/dto"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// printToasts writes every toast to the terminal
type printToasts struct {
	w io.Writer
}

func (p *printToasts) Show(_ context.Context, toast types.Toast) {
	fmt.Fprintf(p.w, "[%s] %s\n", toast.Kind, toast.Message)
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the applicant collection from the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.controller.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return printCounts(cmd.OutOrStdout(), a.sync.Counts().ByStatus, resp.Total)
		},
	}
}

func newApplicantsCmd(a *app) *cobra.Command {
	filter := types.NewDefaultApplicantFilter()
	var onboarding string
	cmd := &cobra.Command{
		Use:   "applicants",
		Short: "List applicants, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			filter.OnboardingStatus = types.OnboardingStatus(onboarding)
			filter.Normalize()
			resp, err := a.sync.ListApplicants(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAPPLICATION\tNAME\tPOSITION\tSTATUS\tONBOARDING")
			for _, r := range resp.Items {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
					r.ID, r.ApplicationID, r.EmployeeName, r.Position, r.ApplicationStatus, r.OnboardingStatus)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d applicants\n", len(resp.Items), resp.Counts.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Section, "section", types.StatusSectionAll, "Status section, or all")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Match name, email or position")
	cmd.Flags().StringVar(&onboarding, "onboarding-status", "", "Onboarding status")
	return cmd
}

func newTransitionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transition <record-id> <status>",
		Short: "Change an applicant's application status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			target := types.ApplicationStatus(args[1])
			if s, ok := types.ParseApplicationStatus(args[1]); ok {
				target = s
			}

			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			r, err := a.workflow.Transition(cmd.Context(), id, target)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", r.EmployeeName, r.ApplicationStatus)
			return nil
		},
	}
}

func newNotificationsCmd(a *app) *cobra.Command {
	var unreadOnly bool
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show the applicant notification feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.notifications.ListNotifications(cmd.Context())
			if err != nil {
				return err
			}
			if unreadOnly {
				resp = &dto.ListNotificationsResponse{
					Items:       lo.Filter(resp.Items, func(n *notification.Notification, _ int) bool { return !n.Read }),
					UnreadCount: resp.UnreadCount,
				}
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tREAD\tAPPLICANT\tTITLE\tCREATED")
			for _, n := range resp.Items {
				fmt.Fprintf(tw, "%d\t%t\t%s\t%s\t%s\n",
					n.ID, n.Read, n.ApplicantName, n.Title, n.CreatedAt.Format("2006-01-02 15:04"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d unread\n", resp.UnreadCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only show unread notifications")
	cmd.AddCommand(&cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.notifications.MarkRead(cmd.Context(), id)
		},
	})
	return cmd
}

func newInterviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Inspect scheduled interviews",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <record-id>",
		Short: "Show the interview scheduled for an applicant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			resp, err := a.scheduler.ViewInterview(cmd.Context(), id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			if !resp.Found {
				fmt.Fprintln(cmd.OutOrStdout(), "No interview scheduled")
				return nil
			}

			d := resp.Detail
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Applicant\t%s <%s>\n", d.ApplicantName, d.ApplicantEmail)
			fmt.Fprintf(tw, "Position\t%s\n", d.Position)
			fmt.Fprintf(tw, "When\t%s %s\n", d.Date, d.Time)
			fmt.Fprintf(tw, "Type\t%s\n", d.Type)
			fmt.Fprintf(tw, "Where\t%s\n", d.Location())
			fmt.Fprintf(tw, "Interviewer\t%s\n", d.Interviewer)
			fmt.Fprintf(tw, "Status\t%s\n", d.Status)
			return tw.Flush()
		},
	})
	return cmd
}

func newResumeCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "resume <record-id>",
		Short: "Download an applicant's resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			path, artifact, err := a.resume.Save(cmd.Context(), id, dir)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"path": path, "resume": artifact})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			if artifact.ArchiveKey != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Archived as %s\n", artifact.ArchiveKey)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Target directory (defaults to resume.dir)")
	return cmd
}

func newSignalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Check the cross-process change flag and refresh when another process left one",
		RunE: func(cmd *cobra.Command, args []string) error {
			fetched, err := a.controller.Focus(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]bool{"refreshed": fetched})
			}
			if !fetched {
				fmt.Fprintln(cmd.OutOrStdout(), "No foreign changes")
				return nil
			}
			return printCounts(cmd.OutOrStdout(), a.sync.Counts().ByStatus, a.sync.Counts().Total)
		},
	}
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ierr.NewErrorf("invalid id %q", raw).
			WithHintf("%q is not a valid id", raw).
			Mark(ierr.ErrValidation)
	}
	return id, nil
}

func printCounts(w io.Writer, byStatus map[types.ApplicationStatus]int, total int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range types.ApplicationStatuses {
		fmt.Fprintf(tw, "%s\t%d\n", s, byStatus[s])
	}
	fmt.Fprintf(tw, "Total\t%d\n", total)
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
