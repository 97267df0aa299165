package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shivamuserology/bulk-change/internal/config"
	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/simulator"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

var stepsDot bool

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the wizard steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSteps(cmd.OutOrStdout(), stepsDot)
	},
}

var schemaPermission string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List editable fields and their permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSchema(cmd.OutOrStdout(), schemaPermission)
	},
}

var (
	initConfigPath  string
	initConfigForce bool
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a config.toml with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeDefaultConfig(cmd.OutOrStdout(), initConfigPath, initConfigForce)
	},
}

func init() {
	stepsCmd.Flags().BoolVar(&stepsDot, "dot", false, "输出 Graphviz DOT 流转图")
	schemaCmd.Flags().StringVar(&schemaPermission, "permission", string(wizard.PermissionFullAccess), "权限场景: full_access/mixed/restricted")
	initConfigCmd.Flags().StringVar(&initConfigPath, "path", "", "配置文件路径（默认可执行文件目录下的 config.toml）")
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false, "覆盖已存在的配置文件")
	rootCmd.AddCommand(stepsCmd, schemaCmd, initConfigCmd)
}

func printSteps(w io.Writer, dot bool) error {
	if dot {
		graph, err := wizard.StepGraph()
		if err != nil {
			return err
		}
		fmt.Fprint(w, graph)
		return nil
	}
	for _, s := range wizard.Steps {
		fmt.Fprintf(w, "%d. %-18s %s\n", s.ID, s.Name, s.Short)
	}
	fmt.Fprintln(w)
	for _, mode := range wizard.EntryModes {
		fmt.Fprintf(w, "%-18s starts at step %d\n", mode, wizard.StartStep(mode))
	}
	return nil
}

func printSchema(w io.Writer, permission string) error {
	scenario, err := wizard.ParsePermissionScenario(permission)
	if err != nil {
		return err
	}
	data, err := mockdata.Default()
	if err != nil {
		return err
	}
	machine := wizard.NewMachine(data, simulator.NewScenarioValidator(data))
	st, err := machine.SetPermissionScenario(machine.Initial(), scenario)
	if err != nil {
		return err
	}

	for _, cat := range data.Schema().Categories {
		printHeading(w, "%s", cat.Label)
		for _, f := range cat.Fields {
			line := fmt.Sprintf("%-18s %-20s %-9s %s", f.ID, f.Label, f.Type, machine.FieldPermission(st, f.ID))
			if len(f.Options) > 0 {
				line += "  [" + strings.Join(f.Options, ", ") + "]"
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func writeDefaultConfig(w io.Writer, path string, force bool) error {
	if path == "" {
		path = config.ConfigPath()
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return err
	}
	printSuccess(w, "Wrote %s", path)
	return nil
}
