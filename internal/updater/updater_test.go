package updater

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/notion"
	"github.com/nsynca/nsynca/internal/notion/notiontest"
	"github.com/nsynca/nsynca/internal/records"
)

const (
	projectsDB    = "projects-db"
	deploymentsDB = "deployments-db"
	tasksDB       = "tasks-db"
	servicesDB    = "services-db"
)

func fixedNow() time.Time {
	return time.Date(2025, 4, 20, 15, 0, 0, 0, time.UTC)
}

// applyAll plans u and applies every record, returning the outcomes.
func applyAll(t *testing.T, gw Gateway, u Updater) []Outcome {
	t.Helper()
	ctx := context.Background()
	recs, err := u.Plan(ctx)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	a := NewApplier(gw)
	var outs []Outcome
	for _, r := range recs {
		out, err := a.Apply(ctx, r)
		if err != nil {
			t.Fatalf("Apply(%s): %v", r.Key, err)
		}
		outs = append(outs, out)
	}
	return outs
}

func actions(outs []Outcome) map[string]int {
	m := make(map[string]int)
	for _, o := range outs {
		m[o.Action]++
	}
	return m
}

func TestDeploymentUpdater(t *testing.T) {
	fake := notiontest.New(t)
	project := fake.AddPage(projectsDB, map[string]notion.PropertyValue{"Name": notiontest.TitleValue("Website")})
	fake.AddPage(deploymentsDB, map[string]notion.PropertyValue{
		"Version":            notiontest.TitleValue("v1.0"),
		"Project":            notiontest.RelationValue(project),
		"Dev Deployed Date":  notiontest.DateValue("2025-01-01"),
		"Prod Deployed Date": notiontest.DateValue("2025-01-03"),
	})
	fake.AddPage(deploymentsDB, map[string]notion.PropertyValue{
		"Version":           notiontest.TitleValue("v1.1"),
		"Project":           notiontest.RelationValue(project),
		"Dev Deployed Date": notiontest.DateValue("2025-02-01"),
	})

	gw := fake.Client()
	u := NewDeploymentUpdater(gw, deploymentsDB, models.DefaultPropertyNames().Deployments)

	outs := applyAll(t, gw, u)
	if len(outs) != 1 || outs[0].Action != models.ActionUpdated || outs[0].Name != "Website" {
		t.Fatalf("outcomes = %+v", outs)
	}

	page, _ := fake.Page(project)
	if got := notion.PlainText(&page, "Last Dev Version"); got != "v1.1" {
		t.Errorf("Last Dev Version = %q, want v1.1", got)
	}
	if got := notion.PlainText(&page, "Last Prod Version"); got != "v1.0" {
		t.Errorf("Last Prod Version = %q, want v1.0", got)
	}
	if n, _ := notion.NumberValue(&page, "Nb Dev Releases"); n != 2 {
		t.Errorf("Nb Dev Releases = %v, want 2", n)
	}

	writes := fake.CountWrites()
	outs = applyAll(t, gw, u)
	if a := actions(outs); a[models.ActionUnchanged] != 1 {
		t.Errorf("second run actions = %v, want unchanged", a)
	}
	if fake.CountWrites() != writes {
		t.Errorf("second run wrote %d times, want 0", fake.CountWrites()-writes)
	}
}

func TestTaskUpdater(t *testing.T) {
	fake := notiontest.New(t)
	p1 := fake.AddPage(projectsDB, map[string]notion.PropertyValue{"Name": notiontest.TitleValue("API")})
	p2 := fake.AddPage(projectsDB, map[string]notion.PropertyValue{
		"Name":            notiontest.TitleValue("App"),
		"Total Tasks":     notiontest.NumberValue(1),
		"Completed Tasks": notiontest.NumberValue(0),
	})
	fake.AddPage(tasksDB, map[string]notion.PropertyValue{
		"Name":    notiontest.TitleValue("a"),
		"Status ": notiontest.SelectValue("Prod Deployed"),
		"Project": notiontest.RelationValue(p1),
	})
	fake.AddPage(tasksDB, map[string]notion.PropertyValue{
		"Name":    notiontest.TitleValue("b"),
		"Status ": notiontest.SelectValue("Todo"),
		"Project": notiontest.RelationValue(p1),
	})
	fake.AddPage(tasksDB, map[string]notion.PropertyValue{
		"Name":    notiontest.TitleValue("c"),
		"Status ": notiontest.SelectValue("Todo"),
		"Project": notiontest.RelationValue(p2),
	})

	gw := fake.Client()
	outs := applyAll(t, gw, NewTaskUpdater(gw, tasksDB, models.DefaultPropertyNames().Tasks))
	a := actions(outs)
	if a[models.ActionUpdated] != 1 || a[models.ActionUnchanged] != 1 {
		t.Errorf("actions = %v, want 1 updated (API) and 1 unchanged (App)", a)
	}

	page, _ := fake.Page(p1)
	total, _ := notion.NumberValue(&page, "Total Tasks")
	done, _ := notion.NumberValue(&page, "Completed Tasks")
	if total != 2 || done != 1 {
		t.Errorf("API totals = %v/%v, want 2/1", done, total)
	}
}

func TestServiceUpdater(t *testing.T) {
	fake := notiontest.New(t)
	svc := fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":              notiontest.TitleValue("Hosting"),
		"Entry Type":        notiontest.SelectValue("Service Profile"),
		"Billing Cycle":     notiontest.SelectValue("Monthly"),
		"Last Payment Date": notiontest.RollupDateValue("2025-03-22"),
	})
	fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":       notiontest.TitleValue("Hosting Mar25"),
		"Entry Type": notiontest.SelectValue("Charge"),
	})

	gw := fake.Client()
	u := NewServiceUpdater(gw, servicesDB, models.DefaultPropertyNames().Services)
	u.Now = fixedNow

	outs := applyAll(t, gw, u)
	if len(outs) != 1 {
		t.Fatalf("got %d outcomes, want only the service profile", len(outs))
	}
	page, _ := fake.Page(svc)
	if got := notion.SelectName(&page, "Status"); got != records.StatusComingSoon {
		t.Errorf("Status = %q, want Coming Soon", got)
	}
	if _, raw, _ := notion.DateStart(&page, "Next Due Date"); raw != "2025-04-22" {
		t.Errorf("Next Due Date = %q, want 2025-04-22", raw)
	}
}

func TestChargeUpdaterIsIdempotent(t *testing.T) {
	fake := notiontest.New(t)
	svc := fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":          notiontest.TitleValue("Acme"),
		"Entry Type":    notiontest.SelectValue("Service Profile"),
		"Billing Cycle": notiontest.SelectValue("Monthly"),
	})
	fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":          notiontest.TitleValue("Weekly Thing"),
		"Entry Type":    notiontest.SelectValue("Service Profile"),
		"Billing Cycle": notiontest.SelectValue("Weekly"),
	})
	fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":           notiontest.TitleValue("Acme Jan25"),
		"Entry Type":     notiontest.SelectValue("Charge"),
		"Date":           notiontest.DateValue("2025-01-10"),
		"Price":          notiontest.NumberValue(20),
		"Linked Service": notiontest.RelationValue(svc),
	})

	gw := fake.Client()
	u := NewChargeUpdater(gw, servicesDB, models.DefaultPropertyNames().Services)
	u.Now = fixedNow

	outs := applyAll(t, gw, u)
	if a := actions(outs); a[models.ActionCreated] != 3 {
		t.Fatalf("actions = %v, want 3 created (Feb, Mar, Apr)", a)
	}
	before := len(fake.Pages(servicesDB))

	outs = applyAll(t, gw, u)
	if len(outs) != 0 {
		t.Errorf("second run planned %d records, want 0", len(outs))
	}
	if after := len(fake.Pages(servicesDB)); after != before {
		t.Errorf("second run changed page count %d -> %d", before, after)
	}

	var names []string
	for _, p := range fake.Pages(servicesDB) {
		if notion.SelectName(&p, "Entry Type") == "Charge" {
			names = append(names, notion.PageTitle(&p))
		}
	}
	want := []string{"Acme Jan25", "Acme Feb25", "Acme Mar25", "Acme Apr25"}
	if len(names) != len(want) {
		t.Fatalf("charges = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("charge %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestChargeUpdaterKeepsRecordedCharges(t *testing.T) {
	fake := notiontest.New(t)
	svc := fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":          notiontest.TitleValue("Acme"),
		"Entry Type":    notiontest.SelectValue("Service Profile"),
		"Billing Cycle": notiontest.SelectValue("Monthly"),
	})
	other := fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":          notiontest.TitleValue("Acme"),
		"Entry Type":    notiontest.SelectValue("Service Profile"),
		"Billing Cycle": notiontest.SelectValue("Weekly"),
	})
	charge := func(name, day string, price float64, service string) string {
		return fake.AddPage(servicesDB, map[string]notion.PropertyValue{
			"Name":           notiontest.TitleValue(name),
			"Entry Type":     notiontest.SelectValue("Charge"),
			"Date":           notiontest.DateValue(day),
			"Price":          notiontest.NumberValue(price),
			"Linked Service": notiontest.RelationValue(service),
		})
	}
	charge("Acme Jan25", "2025-01-10", 20, svc)
	feb := charge("Acme Feb25", "2025-02-12", 20, svc)
	charge("Acme Mar25", "2025-03-10", 25, svc)
	charge("Acme Apr25", "2025-04-02", 5, other)

	gw := fake.Client()
	u := NewChargeUpdater(gw, servicesDB, models.DefaultPropertyNames().Services)
	u.Now = fixedNow

	outs := applyAll(t, gw, u)
	if len(outs) != 1 || outs[0].Action != models.ActionCreated || outs[0].Name != "Acme Apr25" {
		t.Fatalf("outcomes = %+v, want Acme Apr25 created", outs)
	}
	created, _ := fake.Page(outs[0].PageID)
	if got := notion.RelationIDs(&created, "Linked Service"); len(got) != 1 || notion.NormalizeID(got[0]) != notion.NormalizeID(svc) {
		t.Errorf("created charge linked to %v, want %s", got, svc)
	}
	if p, _ := notion.NumberValue(&created, "Price"); p != 25 {
		t.Errorf("created charge price = %v, want 25", p)
	}

	page, _ := fake.Page(feb)
	if _, raw, _ := notion.DateStart(&page, "Date"); raw != "2025-02-12" {
		t.Errorf("February charge date = %s, want 2025-02-12", raw)
	}
	if p, _ := notion.NumberValue(&page, "Price"); p != 20 {
		t.Errorf("February charge price = %v, want 20", p)
	}
	for _, req := range fake.Requests() {
		if req.Method == http.MethodPatch {
			t.Errorf("charge run patched a page: %s", req.Path)
		}
	}
}

func TestApplierCreateOnly(t *testing.T) {
	fake := notiontest.New(t)
	id := fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":  notiontest.TitleValue("Acme Feb25"),
		"Price": notiontest.NumberValue(20),
	})

	out, err := NewApplier(fake.Client()).Apply(context.Background(), Record{
		Key:        LookupKey(servicesDB, "Name", notion.KindTitle, "Acme Feb25"),
		Properties: notion.Properties{"Price": notion.Number(25)},
		CreateOnly: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != models.ActionSkipped || out.PageID != id {
		t.Errorf("outcome = %+v, want skipped on %s", out, id)
	}
	if fake.CountWrites() != 0 {
		t.Error("create-only record wrote to an existing page")
	}
}

func TestApplierMissingPage(t *testing.T) {
	fake := notiontest.New(t)
	_, err := NewApplier(fake.Client()).Apply(context.Background(), Record{
		Key:        PageKey("gone"),
		Properties: notion.Properties{"Total Tasks": notion.Number(1)},
	})
	if !notion.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if !strings.Contains(err.Error(), "not shared with the integration") {
		t.Errorf("err = %v, want a hint about sharing", err)
	}
}

func TestKeyWithin(t *testing.T) {
	base := LookupKey(servicesDB, "Name", notion.KindTitle, "Acme Feb25")
	scoped := base.Within(notion.SelectEquals("Entry Type", "Charge"))
	if len(base.Scope) != 0 {
		t.Error("Within modified the original key")
	}
	f, err := scoped.filter()
	if err != nil {
		t.Fatal(err)
	}
	subs, ok := f["and"].([]notion.Filter)
	if !ok || len(subs) != 2 {
		t.Fatalf("filter = %v, want and of 2", f)
	}
}

func TestChargeUpdaterFailedService(t *testing.T) {
	fake := notiontest.New(t)
	fake.AddPage(servicesDB, map[string]notion.PropertyValue{
		"Name":          notiontest.TitleValue("NoHistory"),
		"Entry Type":    notiontest.SelectValue("Service Profile"),
		"Billing Cycle": notiontest.StatusValue("Yearly"),
	})

	gw := fake.Client()
	u := NewChargeUpdater(gw, servicesDB, models.DefaultPropertyNames().Services)
	u.Now = fixedNow

	recs, err := u.Plan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || !errors.Is(recs[0].Err, records.ErrNoCharges) {
		t.Fatalf("records = %+v, want one failed record", recs)
	}
	if _, err := NewApplier(gw).Apply(context.Background(), recs[0]); !errors.Is(err, records.ErrNoCharges) {
		t.Errorf("Apply error = %v, want ErrNoCharges", err)
	}
	if fake.CountWrites() != 0 {
		t.Error("failed record must not write")
	}
}

func TestApplierLookup(t *testing.T) {
	fake := notiontest.New(t)
	gw := fake.Client()
	a := NewApplier(gw)
	ctx := context.Background()

	rec := Record{
		Key:        LookupKey(servicesDB, "Name", notion.KindTitle, "Acme Feb25"),
		Properties: notion.Properties{"Price": notion.Number(10)},
	}

	out, err := a.Apply(ctx, rec)
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != models.ActionCreated || out.Name != "Acme Feb25" {
		t.Fatalf("first apply = %+v, want created", out)
	}
	page, _ := fake.Page(out.PageID)
	if notion.PageTitle(&page) != "Acme Feb25" {
		t.Error("created page is missing its identifier")
	}

	out, err = a.Apply(ctx, rec)
	if err != nil || out.Action != models.ActionUnchanged {
		t.Fatalf("second apply = %+v, %v; want unchanged", out, err)
	}

	rec.Properties = notion.Properties{"Price": notion.Number(11)}
	out, err = a.Apply(ctx, rec)
	if err != nil || out.Action != models.ActionUpdated {
		t.Fatalf("third apply = %+v, %v; want updated", out, err)
	}
	if got := out.ChangeStrings(); len(got) != 1 || got[0] != "Price: 10 -> 11" {
		t.Errorf("changes = %v", got)
	}
	if n := len(fake.Pages(servicesDB)); n != 1 {
		t.Errorf("database has %d pages, want 1", n)
	}
}

func TestApplierWriteFailure(t *testing.T) {
	fake := notiontest.New(t)
	id := fake.AddPage(projectsDB, map[string]notion.PropertyValue{"Name": notiontest.TitleValue("Broken")})
	fake.FailPage(id, http.StatusBadRequest)

	out, err := NewApplier(fake.Client()).Apply(context.Background(), Record{
		Key:        PageKey(id),
		Properties: notion.Properties{"Total Tasks": notion.Number(1)},
	})
	if err == nil {
		t.Fatal("expected write failure")
	}
	if notion.IsAuthError(err) {
		t.Error("validation failure reported as auth error")
	}
	if out.Name != "Broken" {
		t.Errorf("outcome name = %q, want page title", out.Name)
	}
}

func TestKeyString(t *testing.T) {
	if got := PageKey("abc").String(); got != "abc" {
		t.Errorf("PageKey.String() = %q", got)
	}
	if got := LookupKey("db", "Name", notion.KindTitle, "x").String(); got != "db/Name=x" {
		t.Errorf("LookupKey.String() = %q", got)
	}
}
