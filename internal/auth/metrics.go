package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opRegister       = "register"
	opActivate       = "activate"
	opLogin          = "login"
	opCurrentUser    = "current_user"
	opLogout         = "logout"
	opForgotPassword = "forgot_password"
	opResetPassword  = "reset_password"
	opSweepPending   = "sweep_pending"
)

type Metrics struct {
	operations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog",
			Subsystem: "auth",
			Name:      "operations_total",
			Help:      "Account lifecycle operations by outcome.",
		}, []string{"operation", "outcome"}),
	}
	if err := reg.Register(m.operations); err != nil {
		return nil, err
	}
	return m, nil
}

// observe records "ok" for a nil error and the error kind otherwise.
func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}
