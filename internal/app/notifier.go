package app

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"DomainWatch/domain"
	"DomainWatch/telegram"
)

const (
	adminSubjectFormat = "Domains report - %s"
	customerSubject    = "Domains report"
	disabledPrefix     = "off:"
)

// NotifierService 把客户报告发给管理员和客户本人。
type NotifierService struct {
	Mailer      Mailer
	Sender      telegram.Sender
	From        string
	AdminEmails []string
	Logger      *slog.Logger
	Metrics     *Metrics
}

// Notify 每个收件人单独一封邮件，单个发送失败只记录日志。
func (n *NotifierService) Notify(ctx context.Context, customer domain.Customer, res *CheckAccountResult) error {
	if n.Mailer == nil {
		return ErrMissingDependencies
	}
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("customer", customer.Name)

	report := CreateAccountReport(res)

	adminSubject := fmt.Sprintf(adminSubjectFormat, customer.Name)
	for _, to := range n.AdminEmails {
		n.send(ctx, log.With("dest", "admin", "email", to), "admin", n.compose(to, adminSubject, report))
	}

	for _, to := range customer.Emails {
		if isDisabledAddress(to) {
			log.Debug("customer address disabled, skip", "email", to)
			continue
		}
		n.send(ctx, log.With("dest", "customer", "email", to), "customer", n.compose(to, customerSubject, report))
	}

	if n.Sender != nil {
		err := n.Sender.Send(ctx, adminSubject+"\n\n"+report)
		n.Metrics.report("telegram", err)
		if err != nil {
			log.Error("telegram report failed", "err", err)
		}
	}
	return nil
}

func (n *NotifierService) compose(to, subject, report string) Email {
	return Email{
		From:    n.From,
		To:      to,
		Subject: subject,
		Text:    report,
		HTML:    "<pre>\n" + html.EscapeString(report) + "\n</pre>",
	}
}

func (n *NotifierService) send(ctx context.Context, log *slog.Logger, dest string, e Email) {
	err := n.Mailer.Send(ctx, e)
	n.Metrics.report(dest, err)
	if err != nil {
		log.Error("email send failed", "err", err)
		return
	}
	log.Info("email sent")
}

func isDisabledAddress(addr string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(addr)), disabledPrefix)
}
