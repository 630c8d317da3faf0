package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SecretTokenHeader carries the secret_token given to setWebhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// RequestMaker is satisfied by *tgbotapi.BotAPI
type RequestMaker interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// SetWebhook registers url with a secret Telegram echoes in SecretTokenHeader.
// tgbotapi.WebhookConfig has no secret_token field, so the call is built by hand.
func SetWebhook(api RequestMaker, url, secret string) error {
	if secret == "" {
		return fmt.Errorf("webhook secret is empty")
	}
	params := tgbotapi.Params{"url": url, "secret_token": secret}
	resp, err := api.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("failed to set webhook: %s", resp.Description)
	}
	return nil
}
