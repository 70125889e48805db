// Package pages renders the sandbox payment and review pages. Components are
// built with templ.ComponentFunc; every dynamic value goes through
// templ.EscapeString.
package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/arko-chat/storebridge/components/utils"
)

const style = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7fb;color:#1c1d21}` +
	`main{max-width:28rem;margin:3rem auto;background:#fff;border-radius:12px;padding:2rem;box-shadow:0 2px 12px #0001}` +
	`h1{font-size:1.3rem;margin-top:0}.price{font-size:1.6rem;font-weight:600}.muted{color:#6b6f7b}` +
	`form.inline{display:inline}button{font-size:1rem;padding:.6rem 1.1rem;margin:.3rem .3rem 0 0;border-radius:8px;border:1px solid #ccd}` +
	`button.primary{background:#0077ff;color:#fff;border-color:#0077ff}img.qr{display:block;margin:1rem auto}`

var e = templ.EscapeString[string]

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := write(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, e(title), `</title><style>`, style, `</style></head><body><main>`,
		)
		if err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</main></body></html>`)
	})
}

type PaymentData struct {
	Title       string
	Description string
	Price       string
	Quantity    int
	OrderID     string
	// Created is the formatted invoice time; empty hides it.
	Created string
	// ActionURL is the page URL; outcomes are posted to ActionURL/<outcome>.
	ActionURL string
	QRURL     string
}

func Payment(d PaymentData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := write(w,
			`<h1>`, e(d.Title), `</h1>`,
		)
		if err != nil {
			return err
		}
		if d.Description != "" {
			if err := write(w, `<p class="muted">`, e(d.Description), `</p>`); err != nil {
				return err
			}
		}
		if err := write(w,
			`<p class="price">`, e(d.Price), `</p>`,
			`<p>Quantity: `, strconv.Itoa(d.Quantity), ` `, utils.Pluralize(d.Quantity, "item", "items"), `</p>`,
		); err != nil {
			return err
		}
		if d.Created != "" {
			if err := write(w, `<p class="muted">Invoice created `, e(d.Created), `</p>`); err != nil {
				return err
			}
		}
		if d.OrderID != "" {
			if err := write(w, `<p class="muted">Order `, e(d.OrderID), `</p>`); err != nil {
				return err
			}
		}
		if err := outcomeButton(w, d.ActionURL, "paid", "Pay", true); err != nil {
			return err
		}
		if err := outcomeButton(w, d.ActionURL, "failed", "Decline card", false); err != nil {
			return err
		}
		if err := outcomeButton(w, d.ActionURL, "cancelled", "Cancel", false); err != nil {
			return err
		}
		if d.QRURL != "" {
			return write(w,
				`<img class="qr" width="192" height="192" alt="Open on another device" src="`, e(d.QRURL), `">`,
			)
		}
		return nil
	})
	return Layout("Payment", body)
}

func outcomeButton(w io.Writer, action, outcome, label string, primary bool) error {
	class := ""
	if primary {
		class = ` class="primary"`
	}
	return write(w,
		`<form class="inline" method="post" action="`, e(action+"/"+outcome), `">`,
		`<button type="submit"`, class, `>`, e(label), `</button></form>`,
	)
}

// PaymentDone confirms the outcome and links back into the application.
func PaymentDone(outcome, deeplink string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var heading string
		switch outcome {
		case "paid":
			heading = "Payment complete"
		case "cancelled":
			heading = "Payment cancelled"
		default:
			heading = "Payment failed"
		}
		return write(w,
			`<h1>`, e(heading), `</h1>`,
			`<p class="muted">You can close this page.</p>`,
			`<p><a href="`, e(deeplink), `">Return to the application</a></p>`,
		)
	})
	return Layout("Payment", body)
}

func Review() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<h1>Rate this app</h1><form method="post" action="/sandbox/review"><p>`); err != nil {
			return err
		}
		for i := 1; i <= 5; i++ {
			n := strconv.Itoa(i)
			if err := write(w,
				`<label><input type="radio" name="rating" value="`, n, `" required> `, n, `</label> `,
			); err != nil {
				return err
			}
		}
		return write(w,
			`</p><p><textarea name="comment" rows="4" cols="36" placeholder="Comment (optional)"></textarea></p>`,
			`<button class="primary" type="submit">Send</button></form>`,
		)
	})
	return Layout("Review", body)
}

func Message(title, text string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, `<h1>`, e(title), `</h1><p>`, e(text), `</p>`)
	})
	return Layout(title, body)
}

func ReviewThanks(rating int) templ.Component {
	return Message("Thank you", fmt.Sprintf("Your %d-star review has been saved.", rating))
}
