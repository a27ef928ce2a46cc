// Package slack is a typed client for a subset of the Slack Web API.
//
// Two client types exist. AuthClient carries a bot or user token and is
// used for every method except the OAuth and OpenID Connect code exchanges,
// which run on a BasicClient before any token exists.
//
//	client, err := slack.NewAuthClient(os.Getenv("SLACK_BOT_TOKEN"))
//	if err != nil {
//		return err
//	}
//	msg, err := client.PostMessage(ctx, "C0123", "hello", slack.MessageOptions{})
//
// List methods return one page at a time. Callers drive the loop:
//
//	cursor := slack.NoCursor()
//	for {
//		page, err := client.ListUsers(ctx, "", cursor, slack.DefaultLimit())
//		if err != nil {
//			return err
//		}
//		users = append(users, page.Items()...)
//		if !page.HasMore() {
//			break
//		}
//		cursor = page.Next()
//	}
//
// Every call makes exactly one HTTP request: no retries, no waiting on rate
// limits, no caching. Failures are *Error values; use IsRemote, RemoteCode,
// IsRateLimited and friends to inspect them.
//
// Verify and Verifier check the signature Slack puts on requests it sends to
// an app (Events API, slash commands, interactivity).
package slack
