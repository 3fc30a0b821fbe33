package jobs

import (
	"log"
	"time"

	"kosku/config"
	"kosku/internal/service"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic maintenance jobs. The only job today is the
// overdue-payment sweep, which expires PENDING payments whose checkout window
// lapsed without a gateway notification.
type Scheduler struct {
	cron     *cron.Cron
	payments *service.PaymentService
}

func NewScheduler(cfg *config.Config, payments *service.PaymentService) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	s := &Scheduler{cron: c, payments: payments}
	if _, err := c.AddFunc(cfg.Gateway.ExpirySweepSpec, s.sweepExpiredPayments); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) sweepExpiredPayments() {
	n, err := s.payments.ExpireOverdue(time.Now())
	if err != nil {
		log.Printf("[jobs] expire overdue payments: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[jobs] expired %d overdue payment(s)", n)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[jobs] scheduler started")
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[jobs] scheduler stopped")
}
