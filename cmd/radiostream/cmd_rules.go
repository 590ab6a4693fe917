/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"github.com/spf13/cobra"

	"github.com/friendsincode/radiostream/internal/settings"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show or replace the stored rule settings",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored rule settings as YAML",
	Args:  cobra.NoArgs,
	RunE:  runRulesShow,
}

var rulesLoadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Replace the stored rule settings with a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesLoad,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesLoadCmd)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	stored, err := cat.settings.Load(cmd.Context())
	if err != nil {
		return err
	}
	out, err := settings.EncodeRuleSettings(stored.Rules)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runRulesLoad(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	rules, err := settings.LoadRuleSettingsFile(args[0])
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.settings.SaveRules(cmd.Context(), rules); err != nil {
		return err
	}
	logger.Info().Str("file", args[0]).Msg("rule settings replaced")
	return nil
}
