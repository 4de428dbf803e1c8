package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "emails"
	failedKey = "emails:failed"

	maxTries = 3
)

const (
	TypePaymentConfirmed   = "payment_confirmed"
	TypePaymentRejected    = "payment_rejected"
	TypeMembershipExpiring = "membership_expiring"
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Options struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

type Service struct {
	redis      *redis.Client
	opts       Options
	send       func(Job) error
	retryDelay time.Duration
	pollWait   time.Duration
}

func New(rdb *redis.Client, opts Options) *Service {
	s := &Service{
		redis:      rdb,
		opts:       opts,
		retryDelay: 5 * time.Second,
		pollWait:   2 * time.Second,
	}
	s.send = s.sendNow
	return s
}

func (s *Service) Send(ctx context.Context, kind, to, name, subject, body string) error {
	job := Job{
		Type:    kind,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Error("failed to queue email", "to", to, "type", kind, "error", err)
		metrics.RecordEmail(kind, "queue_failed")
		return err
	}

	metrics.RecordEmail(kind, "queued")
	logger.Info("email queued", "to", to, "type", kind)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")
	go s.reportQueueLength(ctx, 15*time.Second)

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, s.pollWait, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("dropping malformed email job", "error", err)
		return
	}

	job.Tries++
	if err := s.send(job); err != nil {
		logger.Warn("email delivery failed", "to", job.To, "type", job.Type, "attempt", job.Tries, "error", err)

		if job.Tries >= maxTries {
			metrics.RecordEmail(job.Type, "failed")
			s.saveFailed(ctx, job, err)
			return
		}

		select {
		case <-ctx.Done():
		case <-time.After(s.retryDelay):
		}
		data, _ := json.Marshal(job)
		s.redis.LPush(context.WithoutCancel(ctx), queueKey, data)
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Info("email sent", "to", job.To, "type", job.Type)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.opts.FromName, s.opts.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.opts.SMTPUser != "" && s.opts.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.opts.SMTPUser, s.opts.SMTPPass, s.opts.SMTPHost)
	}

	addr := s.opts.SMTPHost + ":" + s.opts.SMTPPort
	return smtp.SendMail(addr, auth, s.opts.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(ctx context.Context, job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.WithoutCancel(ctx), failedKey, data)
	logger.Error("email moved to failed queue", "to", job.To, "type", job.Type, "attempts", job.Tries)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

func (s *Service) reportQueueLength(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.QueueLength(ctx)
		}
	}
}

func (s *Service) Close() error {
	return s.redis.Close()
}
