package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai/gemini"
	"github.com/worxstance/worxstance/internal/networking"
	"github.com/worxstance/worxstance/internal/store"
)

const fieldContactID = "contact_id"

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage networking contacts",
}

var contactsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a contact",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		contactsAdd(cmd, args[0])
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		contactsList()
	},
}

var contactsStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Move a contact to new, contacted, replied, meeting_scheduled, ghosted or connected",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		contactsStatus(args[0], args[1])
	},
}

var contactsLogCmd = &cobra.Command{
	Use:   "log ID",
	Short: "Record a message sent to a contact",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		contactsLog(cmd, args[0])
	},
}

var contactsDraftCmd = &cobra.Command{
	Use:   "draft ID",
	Short: "Draft an outreach message to a contact with Gemini",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		contactsDraft(cmd, args[0])
	},
}

var contactsRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a contact",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		contactsRemove(args[0])
	},
}

func init() {
	rootCmd.AddCommand(contactsCmd)
	contactsCmd.AddCommand(contactsAddCmd, contactsListCmd, contactsStatusCmd, contactsLogCmd, contactsDraftCmd, contactsRemoveCmd)

	contactsAddCmd.Flags().String("role", "", "role of the contact")
	contactsAddCmd.Flags().String("company", "", "company of the contact")
	contactsAddCmd.Flags().String("platform", "", "LinkedIn, Email, Twitter or Other")
	contactsAddCmd.Flags().String("email", "", "email address")
	contactsAddCmd.Flags().String("linkedin", "", "LinkedIn profile URL")
	contactsAddCmd.Flags().String("notes", "", "free-form notes")

	contactsLogCmd.Flags().String("type", string(networking.OutreachMessage), "connection_request, message or email")
	contactsLogCmd.Flags().String("content", "", "what was sent")

	contactsDraftCmd.Flags().String("goal", "", "what the message should achieve")
	contactsDraftCmd.Flags().Bool("log", false, "record the draft as sent")
}

func contactsAdd(cmd *cobra.Command, name string) {
	s := newSession(context.Background())

	platformFlag, _ := cmd.Flags().GetString("platform")
	platform, err := networking.ParsePlatform(platformFlag)
	if err != nil {
		s.logger.Fatal("parsing platform", zap.Error(err))
	}

	c := &networking.Contact{Name: name, Platform: platform}
	c.Role, _ = cmd.Flags().GetString("role")
	c.Company, _ = cmd.Flags().GetString("company")
	c.Email, _ = cmd.Flags().GetString("email")
	c.LinkedinURL, _ = cmd.Flags().GetString("linkedin")
	c.Notes, _ = cmd.Flags().GetString("notes")

	added, err := s.book.Add(s.ctx, c)
	if err != nil {
		s.logger.Fatal("adding contact", zap.Error(err))
	}

	s.logger.Info("contact added", zap.String(fieldContactID, added.ID), zap.String("name", added.Name))
}

func contactsList() {
	s := newSession(context.Background())

	list, err := s.book.List(s.ctx)
	if err != nil {
		s.logger.Fatal("listing contacts", zap.Error(err))
	}

	s.logger.Info("contacts", zap.Int("count", len(list)))
	for _, c := range list {
		s.logger.Info("contact",
			zap.String(fieldContactID, c.ID),
			zap.String("name", c.Name),
			zap.String("role", c.Role),
			zap.String("company", c.Company),
			zap.String("platform", string(c.Platform)),
			zap.String("status", string(c.Status)),
			zap.String("last_action", c.LastActionDate),
			zap.Int("messages", len(c.OutreachHistory)),
		)
	}
}

func contactsStatus(id, value string) {
	s := newSession(context.Background())

	status, err := networking.ParseStatus(value)
	if err != nil {
		s.logger.Fatal("parsing status", zap.Error(err))
	}

	if err := s.book.SetStatus(s.ctx, id, status); err != nil {
		fatalContact(s, id, "updating status", err)
	}

	s.logger.Info("status updated", zap.String(fieldContactID, id), zap.String("status", string(status)))
}

func contactsLog(cmd *cobra.Command, id string) {
	s := newSession(context.Background())

	kind, _ := cmd.Flags().GetString("type")
	content, _ := cmd.Flags().GetString("content")

	c, err := s.book.LogOutreach(s.ctx, id, networking.Outreach{Type: networking.OutreachType(kind), Content: content})
	if err != nil {
		fatalContact(s, id, "logging outreach", err)
	}

	s.logger.Info("outreach logged", zap.String(fieldContactID, id), zap.String("status", string(c.Status)))
}

func contactsDraft(cmd *cobra.Command, id string) {
	s := newSession(context.Background())

	c, err := s.book.Get(s.ctx, id)
	if err != nil {
		fatalContact(s, id, "reading contact", err)
	}

	generator, err := s.newGenerator()
	if err != nil {
		s.logger.Fatal("creating the ai client", zap.Error(err))
	}

	goal, _ := cmd.Flags().GetString("goal")
	draft, err := gemini.NewOutreachWriter(generator, s.logger).Draft(s.ctx, c, s.profile, goal)
	if err != nil {
		s.logger.Fatal("drafting outreach", zap.Error(err))
	}

	s.logger.Info(draft.Text(),
		zap.String(fieldContactID, id),
		zap.String("subject", draft.Subject),
		zap.Strings("personalization", draft.PersonalizationNotes),
		zap.Strings("follow_up", draft.FollowUpIdeas),
	)

	if logIt, _ := cmd.Flags().GetBool("log"); logIt {
		kind := networking.OutreachMessage
		if c.Platform == networking.PlatformEmail {
			kind = networking.OutreachEmail
		}
		if _, err := s.book.LogOutreach(s.ctx, id, networking.Outreach{Type: kind, Content: draft.Subject + "\n\n" + draft.Text()}); err != nil {
			s.logger.Fatal("logging outreach", zap.Error(err))
		}
		s.logger.Info("outreach logged", zap.String(fieldContactID, id))
	}
}

func contactsRemove(id string) {
	s := newSession(context.Background())

	if err := s.book.Remove(s.ctx, id); err != nil {
		s.logger.Fatal("removing contact", zap.Error(err))
	}

	s.logger.Info("contact removed", zap.String(fieldContactID, id))
}

func fatalContact(s *session, id, action string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Fatal("no such contact", zap.String(fieldContactID, id))
	}
	s.logger.Fatal(action, zap.Error(err))
}
