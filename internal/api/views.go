package api

import (
	"html/template"
	"strings"
	"time"

	"github.com/abelzeko/plant-bot/internal/care"
	"github.com/abelzeko/plant-bot/internal/usecases"
)

var (
	layoutHTML = `{{define "header"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>Plant Care</title>
  <style>
    body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; margin: 0; background: #0b1215; color: #e6f1f5; }
    header { padding: 1.5rem 1rem; text-align: center; }
    main { max-width: 960px; margin: 0 auto; padding: 1rem; }
    .card { background: #0d1a1f; border: 1px solid #11303a; border-radius: 16px; padding: 1rem; margin-bottom: 1rem; }
    h1 { font-size: 1.75rem; margin: 0; }
    h2 { font-size: 1.25rem; margin-top: 0; }
    .muted { color: #8fb8c4; }
    table { width: 100%; border-collapse: collapse; }
    td, th { text-align: left; padding: .4rem; border-bottom: 1px solid #11303a; }
  </style>
</head>
<body>
  <header>
    <h1>🌿 Plant Care</h1>
    <p class="muted"><a href="/views/tasks">Tasks</a> · <a href="/views/calendar">Calendar</a></p>
  </header>
  <main>{{end}}
{{define "footer"}}</main>
</body>
</html>{{end}}`

	tasksHTML = `{{define "tasks"}}{{template "header" .}}
{{if .Empty}}
<div class="card"><p class="empty">All plants are happy. Nothing to do right now.</p></div>
{{else}}
{{range .Sections}}{{if .Tasks}}
<div class="card section" id="{{.ID}}">
  <h2>{{.Title}}</h2>
  <ul>
  {{range .Tasks}}<li class="task" data-plant="{{.PlantID}}" data-kind="{{.Kind}}">{{.Name}}: {{.Due}}</li>
  {{end}}</ul>
</div>
{{end}}{{end}}
{{end}}
{{template "footer" .}}{{end}}`

	calendarHTML = `{{define "calendar"}}{{template "header" .}}
<div class="card">
  <h2>{{.Title}}</h2>
  <table id="calendar">
    <tr><th>Day</th><th>💧 Water</th><th>🌱 Feed</th></tr>
    {{range .Days}}<tr class="day" data-date="{{.Date}}">
      <td>{{.Label}}</td>
      <td class="watering">{{join .Watering ", "}}</td>
      <td class="feeding">{{join .Feeding ", "}}</td>
    </tr>
    {{end}}
  </table>
</div>
{{template "footer" .}}{{end}}`

	funcs = template.FuncMap{"join": strings.Join}

	// one set holding the layout partials and every page, handed to gin
	viewTemplates = template.Must(template.New("views").Funcs(funcs).Parse(layoutHTML + tasksHTML + calendarHTML))
)

type taskRow struct {
	PlantID string
	Name    string
	Kind    string
	Due     string
}

type taskSection struct {
	ID    string
	Title string
	Tasks []taskRow
}

type dayRow struct {
	Date     string
	Label    string
	Watering []string
	Feeding  []string
}

func tasksPage(board care.TaskBoard) map[string]any {
	section := func(id, title string, tasks []care.Task) taskSection {
		rows := make([]taskRow, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, taskRow{
				PlantID: t.Plant.ID,
				Name:    t.Plant.Name,
				Kind:    string(t.Kind),
				Due:     t.DueAt.Format("2006-01-02"),
			})
		}
		return taskSection{ID: id, Title: title, Tasks: rows}
	}
	return map[string]any{
		"Empty": board.Empty(),
		"Sections": []taskSection{
			section("watering", "Water today", board.OverdueOrDueTodayWatering),
			section("feeding", "Needs feeding", board.OverdueFeeding),
			section("upcoming", "Coming up", board.UpcomingChecks),
		},
	}
}

func calendarPage(view usecases.CalendarView) map[string]any {
	rows := make([]dayRow, 0, len(view.Days))
	for _, d := range view.Days {
		b := view.Buckets[d]
		row := dayRow{Date: d.String(), Label: d.In(time.UTC).Format("Mon 02 Jan")}
		for _, id := range b.WateringDue {
			row.Watering = append(row.Watering, view.Names[id])
		}
		for _, id := range b.FeedingDue {
			row.Feeding = append(row.Feeding, view.Names[id])
		}
		rows = append(rows, row)
	}
	title := "Calendar"
	if len(view.Days) > 0 {
		title = "Calendar from " + view.Days[0].String()
	}
	return map[string]any{"Title": title, "Days": rows}
}
