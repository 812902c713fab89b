package notify

import (
	"fmt"

	"github.com/pssiii/marketing-backend/internal/account/entity"
)

func verificationMessage(baseURL string, u *entity.User, token string) Message {
	link := fmt.Sprintf("%s/verify-email/%s", baseURL, token)
	body := fmt.Sprintf(`Hello %s,

Thank you for registering!

Please open the following link to verify your email address:
%s

This link will expire in 24 hours.

If you didn't create an account, please ignore this email.
`, u.FirstName, link)
	html := fmt.Sprintf(`<html><body>
<p>Hello %s,</p>
<p>Thank you for registering!</p>
<p>Please click the button below to verify your email address:</p>
<a href="%s" style="background-color:#000;color:#fff;padding:12px 24px;text-decoration:none;border-radius:4px;display:inline-block;">Verify Email</a>
<p>This link will expire in 24 hours.</p>
<p>If you didn't create an account, please ignore this email.</p>
</body></html>`, u.FirstName, link)
	return Message{
		To:      u.Email,
		Subject: "Verify your email address",
		Body:    body,
		HTML:    html,
	}
}

func adminAlertMessage(adminEmail string, u *entity.User) Message {
	body := fmt.Sprintf(`A new user has registered:

Username: %s
Email: %s
Name: %s %s
Registration date: %s

Please review and approve this account.
`, u.Username, u.Email, u.FirstName, u.LastName, u.CreatedAt.Format("2006-01-02 15:04:05"))
	return Message{
		To:      adminEmail,
		Subject: "New user registration",
		Body:    body,
	}
}

func decisionMessage(u *entity.User, approved bool) Message {
	if approved {
		return Message{
			To:      u.Email,
			Subject: "Account approved",
			Body: fmt.Sprintf(`Hello %s,

Your account has been approved! You can now sign in.
`, u.FirstName),
		}
	}
	return Message{
		To:      u.Email,
		Subject: "Account status update",
		Body: fmt.Sprintf(`Hello %s,

Your account registration is currently under review. We will notify you
once a decision has been made.
`, u.FirstName),
	}
}
