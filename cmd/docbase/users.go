// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Query the user and team directory",
	Long: `Users answers questions against the YAML user directory: resolving
@handle and @team/name references, listing the transitive members of a
team, and checking membership through nested teams.`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all user and team handles",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersResolveCmd = &cobra.Command{
	Use:   "resolve <ref>",
	Short: "Resolve a @handle or @team/name reference",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersResolve,
}

var usersMembersCmd = &cobra.Command{
	Use:   "members <team>",
	Short: "List the transitive members of a team",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersMembers,
}

var usersIsMemberCmd = &cobra.Command{
	Use:   "is-member <user> <team>",
	Short: "Check whether a user belongs to a team",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsersIsMember,
}

func requireUsers(cmd *cobra.Command) (*workspace, error) {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return nil, err
	}
	if ws.users == nil {
		return nil, fmt.Errorf("no user directory configured: pass --users or add users.yaml to the document root")
	}
	return ws, nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	ws, err := requireUsers(cmd)
	if err != nil {
		return err
	}
	for _, h := range ws.users.Handles() {
		fmt.Fprintf(os.Stdout, "@%s\n", h)
	}
	for _, h := range ws.users.TeamHandles() {
		fmt.Fprintf(os.Stdout, "@team/%s\n", h)
	}
	return nil
}

func runUsersResolve(cmd *cobra.Command, args []string) error {
	ws, err := requireUsers(cmd)
	if err != nil {
		return err
	}
	ref := args[0]

	if u, ok := ws.users.ResolveHandle(ref); ok {
		fmt.Fprintf(os.Stdout, "user %s\n", u.Handle)
		if u.Name != "" {
			fmt.Fprintf(os.Stdout, "  name: %s\n", u.Name)
		}
		if u.Email != "" {
			fmt.Fprintf(os.Stdout, "  email: %s\n", u.Email)
		}
		for _, team := range u.Teams {
			fmt.Fprintf(os.Stdout, "  team: %s\n", team)
		}
		return nil
	}
	if team, ok := ws.users.ResolveTeam(ref); ok {
		fmt.Fprintf(os.Stdout, "team %s\n", team.Handle)
		if team.Name != "" {
			fmt.Fprintf(os.Stdout, "  name: %s\n", team.Name)
		}
		for _, sub := range team.Teams {
			fmt.Fprintf(os.Stdout, "  contains: %s\n", sub)
		}
		return nil
	}
	return fmt.Errorf("%q does not resolve to a known user or team", ref)
}

func runUsersMembers(cmd *cobra.Command, args []string) error {
	ws, err := requireUsers(cmd)
	if err != nil {
		return err
	}
	if _, ok := ws.users.ResolveTeam("@team/" + args[0]); !ok {
		return fmt.Errorf("unknown team %q", args[0])
	}
	for _, handle := range ws.users.Members(args[0]) {
		fmt.Fprintln(os.Stdout, handle)
	}
	return nil
}

func runUsersIsMember(cmd *cobra.Command, args []string) error {
	ws, err := requireUsers(cmd)
	if err != nil {
		return err
	}
	if ws.users.IsMember(args[0], args[1]) {
		fmt.Fprintf(os.Stdout, "%s is a member of %s\n", args[0], args[1])
		return nil
	}
	return fmt.Errorf("%s is not a member of %s", args[0], args[1])
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersResolveCmd)
	usersCmd.AddCommand(usersMembersCmd)
	usersCmd.AddCommand(usersIsMemberCmd)

	rootCmd.AddCommand(usersCmd)
}
