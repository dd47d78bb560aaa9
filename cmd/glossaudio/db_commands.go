package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"glossaudio/internal/cdr"
	"glossaudio/internal/pipeline"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the local CDR database",
	}

	dbCmd.AddCommand(newDBInitCommand(ctx))
	dbCmd.AddCommand(newDBGrantCommand(ctx))
	dbCmd.AddCommand(newDBSettingCommand(ctx))
	dbCmd.AddCommand(newDBAddDocCommand(ctx))

	return dbCmd
}

func newDBInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", store.Path())
			return nil
		},
	}
}

func newDBGrantCommand(ctx *commandContext) *cobra.Command {
	var (
		importPerms bool
		revoke      bool
	)

	cmd := &cobra.Command{
		Use:   "grant USER [ACTION[:DOCTYPE]...]",
		Short: "Grant (or revoke) permissions to a user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := strings.TrimSpace(args[0])
			var perms []cdr.Permission
			if importPerms {
				perms = append(perms, pipeline.RequiredPermissions...)
			}
			for _, arg := range args[1:] {
				perm, err := parsePermission(arg)
				if err != nil {
					return err
				}
				perms = append(perms, perm)
			}
			if len(perms) == 0 {
				return fmt.Errorf("no permissions given; list ACTION[:DOCTYPE] values or pass --import")
			}

			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			verb := "Granted"
			if revoke {
				verb = "Revoked"
				err = store.Revoke(cmd.Context(), user, perms...)
			} else {
				err = store.Grant(cmd.Context(), user, perms...)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range perms {
				fmt.Fprintf(out, "%s %s to %s\n", verb, p, user)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&importPerms, "import", false, "Include every permission an audio import needs")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "Remove the permissions instead of granting them")
	return cmd
}

// parsePermission accepts "AUDIO IMPORT" or "MODIFY DOCUMENT:Media".
func parsePermission(value string) (cdr.Permission, error) {
	action, docType, _ := strings.Cut(value, ":")
	action = strings.ToUpper(strings.TrimSpace(action))
	if action == "" {
		return cdr.Permission{}, fmt.Errorf("invalid permission %q", value)
	}
	return cdr.Permission{Action: action, DocType: strings.TrimSpace(docType)}, nil
}

func newDBSettingCommand(ctx *commandContext) *cobra.Command {
	settingCmd := &cobra.Command{
		Use:   "setting",
		Short: "Read or change ctl settings",
	}

	settingCmd.AddCommand(&cobra.Command{
		Use:   "get GROUP NAME",
		Short: "Show the active value of a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			value, ok, err := store.Setting(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s is not set\n", args[0], args[1])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	settingCmd.AddCommand(&cobra.Command{
		Use:   "set GROUP NAME VALUE",
		Short: "Set the active value of a setting",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.SetSetting(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s/%s\n", args[0], args[1])
			return nil
		},
	})

	settingCmd.AddCommand(&cobra.Command{
		Use:   "clear GROUP NAME",
		Short: "Deactivate a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.ClearSetting(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s/%s\n", args[0], args[1])
			return nil
		},
	})

	return settingCmd
}

func newDBAddDocCommand(ctx *commandContext) *cobra.Command {
	var (
		docType  string
		title    string
		xmlPath  string
		blobPath string
	)

	cmd := &cobra.Command{
		Use:   "add-doc",
		Short: "Store a new document, for seeding a test tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(xmlPath) == "" {
				return fmt.Errorf("--xml is required")
			}
			xml, err := os.ReadFile(xmlPath)
			if err != nil {
				return fmt.Errorf("read xml: %w", err)
			}
			var blob []byte
			if blobPath != "" {
				if blob, err = os.ReadFile(blobPath); err != nil {
					return fmt.Errorf("read blob: %w", err)
				}
			}

			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			id, err := store.Create(cmd.Context(), &cdr.Document{
				DocType: docType,
				Title:   title,
				XML:     xml,
				Blob:    blob,
			}, cdr.SaveOptions{
				Validate: true,
				Version:  true,
				Unlock:   true,
				Comment:  "Added from the command line",
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", cdr.FormatID(id), strconv.Quote(title))
			return nil
		},
	}

	cmd.Flags().StringVar(&docType, "type", cdr.DocTypeGlossaryTermName, "Document type")
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	cmd.Flags().StringVar(&xmlPath, "xml", "", "File holding the document XML")
	cmd.Flags().StringVar(&blobPath, "blob", "", "File holding the document blob")
	return cmd
}
