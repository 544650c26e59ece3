package main

import (
	"fmt"

	"github.com/mateothegreat/osformula/checks"
	"github.com/mateothegreat/osformula/config"
	"github.com/mateothegreat/osformula/scenario"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newListCommand(opts *options) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list the scenarios of the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			if asYAML {
				return scenario.Write(cmd.OutOrStdout(), table)
			}
			for _, name := range table.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the table in the table file format")
	return cmd
}

func resolve(opts *options, name string) (config.Config, error) {
	table, err := opts.table()
	if err != nil {
		return config.Config{}, err
	}
	c, err := table.Resolve(scenario.Name(name), config.Defaults())
	if err != nil {
		return config.Config{}, err
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("scenario %q: %w", name, err)
	}
	return c, nil
}

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "print the configuration of a scenario merged onto the defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolve(opts, args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(c); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newRenderCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "render NAME",
		Short: "print the opensearch.yml of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolve(opts, args[0])
			if err != nil {
				return err
			}
			b, err := c.Render()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func newGraphCommand(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "print the ordering of the shared check groups in D2",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := checks.NewSuite()
			if err != nil {
				return err
			}
			if out == "" {
				return suite.WriteD2(cmd.OutOrStdout())
			}
			if err := suite.ToD2(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}
