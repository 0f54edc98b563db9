package server

import (
	"net/http"

	"github.com/jrsteele09/office-roster/roster"
	"github.com/rs/zerolog"
)

// IndexPageData contains data for rendering the dashboard
type IndexPageData struct {
	AppName   string
	UserEmail string
	Error     string
	Days      []DayCard
}

// IndexHandler renders the dashboard for the displayed week (GET /)
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := IndexPageData{
			AppName: s.config.GetAppName(),
		}
		if claims, ok := SessionFromContext(r.Context()); ok {
			data.UserEmail = claims.Email
		}

		dates := roster.ComputeDisplayedWeekDates(s.nowTime())
		weekly, err := s.roster.WeeklyRoster(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("Failed to build roster for dashboard")
			data.Error = err.Error()
		} else {
			data.Days = buildDayCards(dates, weekly)
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := tmpl.Execute(w, data); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("Failed to render index template")
		}
	}
}
