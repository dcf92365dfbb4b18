// internal/dispatch/render.go
package dispatch

import (
    "fmt"
    "strings"

    "github.com/unclebandit/sendmulticamp/internal/mailer"
    "github.com/unclebandit/sendmulticamp/internal/model"
)

// Render substitutes the per-recipient placeholders into a template.
// Missing name fields become empty strings; the email placeholder always
// carries the literal address from the subscriber record. Anything that is
// not a recognized placeholder passes through verbatim, so rendering is
// idempotent once no known placeholders remain.
func Render(template string, sub *model.Subscriber) string {
    replacer := strings.NewReplacer(
        "{{first_name}}", sub.FirstName,
        "{{last_name}}", sub.LastName,
        "{{email}}", sub.Email,
    )
    return replacer.Replace(template)
}

// RenderMessage builds the outbound message for one recipient. When one
// body is empty the other is substituted in its place, so every send has
// both a text and an HTML part.
func RenderMessage(c *model.Campaign, sub *model.Subscriber) mailer.Message {
    htmlTemplate := c.HTMLContent
    if htmlTemplate == "" {
        htmlTemplate = c.TextContent
    }
    textTemplate := c.TextContent
    if textTemplate == "" {
        textTemplate = c.HTMLContent
    }

    return mailer.Message{
        From:    fmt.Sprintf("%q <%s>", c.FromName, c.FromEmail),
        To:      sub.Email,
        Subject: Render(c.Subject, sub),
        Text:    Render(textTemplate, sub),
        HTML:    Render(htmlTemplate, sub),
        ReplyTo: c.ReplyTo,
    }
}
