// Package mail implements the openleads Mailer collaborator over SMTP
// using gomail, with built-in HTML templates for the OTP messages.
package mail
