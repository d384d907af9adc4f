package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"dlh/dlh/utils/color"
	httputils "dlh/dlh/utils/http"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session token (reads DLH_EMAIL and DLH_PASSWORD when set)",
	RunE:  runLogin,
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	} `json:"user"`
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(os.Stdin)
	email := os.Getenv("DLH_EMAIL")
	if email == "" {
		email = ask(in, "email: ")
	}
	password := os.Getenv("DLH_PASSWORD")
	if password == "" {
		password = ask(in, "password: ")
	}

	var resp loginResponse
	c := httputils.NewClient(apiURL)
	err := c.PostJSON(cmd.Context(), "/auth/login", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return err
	}
	if err := saveToken(resp.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Println(color.Info("Signed in as " + resp.User.FullName + " <" + resp.User.Email + ">"))
	return nil
}

func ask(in *bufio.Reader, prompt string) string {
	fmt.Print(color.Prompt(prompt))
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
