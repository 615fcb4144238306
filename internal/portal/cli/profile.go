package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"healgenie-portal/internal/portal/backend"
	"healgenie-portal/internal/portal/profile"
)

var errProfileNotLoaded = errors.New("profile is not loaded yet")

func (a *App) whoami(ctx context.Context, args []string) error {
	if err := a.flagSet("whoami").Parse(args); err != nil {
		return err
	}
	identity, err := a.requireIdentity()
	if err != nil {
		return err
	}

	view, err := a.readyView()
	if err != nil {
		return err
	}
	a.printProfile(identity, view)

	if view.Patient != nil {
		return a.printPrescriptions(ctx)
	}
	return nil
}

func (a *App) refresh(ctx context.Context, args []string) error {
	if err := a.flagSet("refresh").Parse(args); err != nil {
		return err
	}
	identity, err := a.requireIdentity()
	if err != nil {
		return err
	}

	if err := a.store.RefreshProfile(); err != nil {
		return a.fail("Refresh failed", err)
	}
	if err := a.store.Settle(ctx); err != nil {
		return a.fail("Refresh failed", err)
	}

	view, err := a.readyView()
	if err != nil {
		return err
	}
	a.printProfile(identity, view)
	return nil
}

func (a *App) symbols(ctx context.Context, args []string) error {
	if err := a.flagSet("symbols").Parse(args); err != nil {
		return err
	}
	if _, err := a.requireIdentity(); err != nil {
		return err
	}

	symbols, err := a.client.ListProfileSymbols(ctx)
	if err != nil {
		return a.fail("Failed to load profile symbols", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tICON")
	for _, s := range symbols {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Name, s.IconURL)
	}
	return tw.Flush()
}

// readyView returns the loaded profile. A failed load was already reported
// by the loader.
func (a *App) readyView() (*profile.View, error) {
	snap := a.store.Profile()
	switch snap.State {
	case profile.StateReady:
		return snap.View, nil
	case profile.StateErrored:
		return nil, snap.Err
	default:
		return nil, a.fail("Profile unavailable", errProfileNotLoaded)
	}
}

func displayName(view *profile.View) string {
	name := strings.TrimSpace(view.Profile.FirstName + " " + view.Profile.LastName)
	if view.Doctor != nil {
		return "Dr. " + name
	}
	return name
}

func (a *App) printProfile(identity *backend.Session, view *profile.View) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Name:\t%s\n", displayName(view))
	fmt.Fprintf(tw, "Email:\t%s\n", identity.User.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", view.UserType())
	if view.Profile.Phone != nil {
		fmt.Fprintf(tw, "Phone:\t%s\n", *view.Profile.Phone)
	}
	if view.Symbol != nil {
		fmt.Fprintf(tw, "Symbol:\t%s\n", view.Symbol.Name)
	}

	switch {
	case view.Doctor != nil:
		fmt.Fprintf(tw, "Designation:\t%s\n", view.Doctor.Designation)
		fmt.Fprintf(tw, "Specialty:\t%s\n", view.Doctor.Specialty)
		fmt.Fprintf(tw, "Experience:\t%d years\n", view.Doctor.Experience)
	case view.Patient != nil:
		fmt.Fprintf(tw, "Date of birth:\t%s\n", view.Patient.DateOfBirth)
		fmt.Fprintf(tw, "Age:\t%d\n", view.Patient.Age)
		fmt.Fprintf(tw, "Allergies:\t%s\n", listOrNone(view.Patient.Allergies))
	}
}

func (a *App) printPrescriptions(ctx context.Context) error {
	prescriptions, err := a.client.ListPrescriptions(ctx)
	if err != nil {
		return a.fail("Failed to load prescriptions", err)
	}

	var current, past []backend.Prescription
	for _, p := range prescriptions {
		if p.IsActive {
			current = append(current, p)
		} else {
			past = append(past, p)
		}
	}

	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Current prescriptions (%d)\n", len(current))
	writePrescriptions(a.out, current)
	fmt.Fprintf(a.out, "Past prescriptions (%d)\n", len(past))
	writePrescriptions(a.out, past)
	return nil
}

func writePrescriptions(w io.Writer, prescriptions []backend.Prescription) {
	for _, p := range prescriptions {
		disease := "General"
		if p.Disease != nil && *p.Disease != "" {
			disease = *p.Disease
		}
		fmt.Fprintf(w, "  %s, prescribed on %s\n", disease, p.CreatedAt.Format("2006-01-02"))
		if len(p.Symptoms) > 0 {
			fmt.Fprintf(w, "    Symptoms: %s\n", strings.Join(p.Symptoms, ", "))
		}
		for _, m := range p.Medicines {
			line := fmt.Sprintf("    - %s (%s)", m.Name, m.Timing)
			if m.Price.Valid {
				line += " " + m.Price.Decimal.StringFixed(2)
			}
			fmt.Fprintln(w, line)
		}
		if p.SpecialNotes != nil && *p.SpecialNotes != "" {
			fmt.Fprintf(w, "    Notes: %s\n", *p.SpecialNotes)
		}
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
