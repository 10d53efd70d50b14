package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/utafrali/EcommerceGo/storefront/internal/notify"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// finish prints the displayed notification, if any, and maps err to a CLI error.
func finish(cmd *cobra.Command, rt *cli, err error) error {
	if n, ok := rt.storefront().Notifications.Current(); ok {
		marker := "+"
		if n.Severity == notify.SeverityError {
			marker = "!"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", marker, n.Message)
	}
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Redirect != "" {
		return fmt.Errorf("%s: run `storefront auth login` first", appErr.Message)
	}
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		return fmt.Errorf("invalid input: %s", appErr.Message)
	}
	return errors.New(apperrors.Message(err))
}
