package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jmehdipour/enroll-gateway/internal/config"
	"github.com/jmehdipour/enroll-gateway/internal/signature"
	"github.com/spf13/cobra"
)

func newSignCmd() *cobra.Command {
	var secret, id, body, file string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the Framer-Signature header for a webhook body",
		Example: `  enroll-gateway sign --id sub_123 --body '{"name":"Ana","email":"ana@x.com"}'
  enroll-gateway sign --id sub_123 --file payload.json --secret s3cret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New("--id is required")
			}

			if secret == "" {
				cfg, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				secret = cfg.Webhook.Secret
			}
			if secret == "" {
				return errors.New("no secret: pass --secret or set webhook.secret")
			}

			raw, err := readBody(cmd.InOrStdin(), body, file)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), signature.Sign(secret, id, raw))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "webhook secret (default: webhook.secret from config)")
	cmd.Flags().StringVar(&id, "id", "", "framer-webhook-submission-id value")
	cmd.Flags().StringVar(&body, "body", "", "raw request body")
	cmd.Flags().StringVar(&file, "file", "", "read the body from a file, - for stdin")
	cmd.MarkFlagsMutuallyExclusive("body", "file")
	return cmd
}

func readBody(stdin io.Reader, body, file string) ([]byte, error) {
	switch file {
	case "":
		return []byte(body), nil
	case "-":
		return io.ReadAll(stdin)
	default:
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return b, nil
	}
}
