// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

func newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node <id>",
		Short: "Show a node and its properties",
		Args:  cobra.ExactArgs(1),
		RunE:  runNode,
	}
	cmd.Flags().Bool("json", false, "print the node as JSON")
	return cmd
}

func newNeighborsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors <id>",
		Short: "List the targets of a node's outgoing edges",
		Args:  cobra.ExactArgs(1),
		RunE:  runNeighbors,
	}
	cmd.Flags().Bool("json", false, "print neighbors as JSON")
	return cmd
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id := args[0]
	node, ok, err := st.GetNode(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !ok {
		return pwerr.New(pwerr.CodeCLINodeNotFound, fmt.Sprintf("node %q not found", id), pwerr.FieldNodeID(id))
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, node)
	}

	heading := titleStyle.Render(displayName(node.ID, node.Properties)) + " " + dimStyle.Render(string(node.Type)+" "+node.ID)
	body := heading
	if props := formatProperties(node.Properties); props != "" {
		body += "\n" + props
	}
	_, _ = fmt.Fprintln(out, boxStyle.Render(body))
	return nil
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id := args[0]
	if _, ok, err := st.GetNode(cmd.Context(), id); err != nil {
		return err
	} else if !ok {
		return pwerr.New(pwerr.CodeCLINodeNotFound, fmt.Sprintf("node %q not found", id), pwerr.FieldNodeID(id))
	}

	neighbors, err := st.GetOutgoingNeighbors(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, neighbors)
	}

	if len(neighbors) == 0 {
		_, _ = fmt.Fprintln(out, dimStyle.Render("No outgoing edges."))
		return nil
	}
	for _, n := range neighbors {
		_, _ = fmt.Fprintf(out, "%s %-14s %s\n",
			labelStyle.Render(fmt.Sprintf("%-16s", n.EdgeType)),
			n.Node.ID,
			dimStyle.Render(string(n.Node.Type)),
		)
	}
	return nil
}
