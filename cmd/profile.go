package cmd

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calmora/calmora-cli/internal/calmora"
	"github.com/calmora/calmora-cli/pkg/output"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Account profile commands",
	Long:  "View, edit or delete your Calmora account",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := service().Profile(cmd.Context())
		if err != nil {
			return err
		}

		if outputFmt != output.FormatTable {
			return output.Render(outputFmt, p, nil)
		}
		output.KeyValue([][2]string{
			{"Full name", orDash(p.FullName)},
			{"Username", p.Username},
			{"Email", p.Email},
			{"Gender", orDash(p.Gender)},
			{"Birth date", orDash(p.BirthDate)},
			{"Photo", orDash(p.ProfileImage)},
		})
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your profile",
	Long: `Edit your profile. Fields not given keep their current value.

The update is always sent as a multipart form, with or without --photo.
Changing the username makes the backend issue a new session token, which
replaces the stored one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := service().Profile(cmd.Context())
		if err != nil {
			return err
		}

		u := calmora.ProfileUpdate{
			FullName:  flagOr(cmd, "full-name", current.FullName),
			Email:     flagOr(cmd, "email", current.Email),
			Username:  flagOr(cmd, "username", current.Username),
			Gender:    flagOr(cmd, "gender", current.Gender),
			BirthDate: flagOr(cmd, "birth-date", current.BirthDate),
		}
		if u.Gender != "" && !slices.Contains(calmora.Genders, u.Gender) {
			return fmt.Errorf("%w: gender must be one of %s", calmora.ErrInvalidInput, strings.Join(calmora.Genders, ", "))
		}

		if path, _ := cmd.Flags().GetString("photo"); path != "" {
			photo, closer, err := calmora.OpenPhoto(path)
			if err != nil {
				return err
			}
			defer closer.Close()
			u.Photo = photo
		}

		res, err := service().UpdateProfile(cmd.Context(), u)
		if err != nil {
			return err
		}

		if outputFmt != output.FormatTable {
			return output.Render(outputFmt, res, nil)
		}
		output.Success("%s", res.Message)
		if res.TokenRotated() {
			output.Info("Username changed; the stored session token was replaced.")
		}
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your account",
	Long:  "Permanently delete your account and all tracker entries, then log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			answer, err := promptText(bufio.NewReader(stdin), "Type DELETE to permanently remove your account")
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if answer != "DELETE" {
				output.Warn("Aborted; account not deleted")
				return nil
			}
		}

		res, err := service().DeleteAccount(cmd.Context())
		if err != nil {
			return err
		}
		output.Success("%s", res.Message)
		return nil
	},
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profileDeleteCmd)

	profileUpdateCmd.Flags().String("full-name", "", "Full name")
	profileUpdateCmd.Flags().String("email", "", "Email")
	profileUpdateCmd.Flags().String("username", "", "Username")
	profileUpdateCmd.Flags().String("gender", "", "Gender: Male, Female or Other")
	profileUpdateCmd.Flags().String("birth-date", "", "Birth date (YYYY-MM-DD)")
	profileUpdateCmd.Flags().String("photo", "", "Path to a profile image")

	profileDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
