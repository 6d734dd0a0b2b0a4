package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "historyquiz_logins_total",
		Help: "Completed sign-in callbacks by result.",
	}, []string{"result"})

	ProviderFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "historyquiz_provider_fetches_total",
		Help: "Outbound OIDC provider fetches by kind (discovery, jwks, token).",
	}, []string{"kind"})

	CSRFRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "historyquiz_csrf_rejections_total",
		Help: "Form posts rejected by the CSRF check.",
	})

	AnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "historyquiz_answers_total",
		Help: "Quiz answers judged, by correctness.",
	}, []string{"result"})

	QuestionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "historyquiz_questions_total",
		Help: "Total number of questions in the database.",
	})
)
