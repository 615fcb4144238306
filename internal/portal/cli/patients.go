package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
)

const defaultSearchLimit = 20

func (a *App) search(ctx context.Context, args []string) error {
	fs := a.flagSet("search")
	limit := fs.IntP("limit", "n", defaultSearchLimit, "maximum number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireDoctor(); err != nil {
		return err
	}

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return a.fail("Search Error", ErrEmptyQuery)
	}

	patients, err := a.client.SearchPatients(ctx, query, *limit)
	if err != nil {
		return a.fail("Search failed", err)
	}
	if len(patients) == 0 {
		fmt.Fprintln(a.out, "No patients match your search criteria")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAGE\tLAST VISIT")
	for _, p := range patients {
		lastVisit := "-"
		if p.LastVisit != nil {
			lastVisit = p.LastVisit.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Age, lastVisit)
	}
	return tw.Flush()
}

func (a *App) record(ctx context.Context, args []string) error {
	fs := a.flagSet("record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireDoctor(); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return a.fail("Invalid arguments", fmt.Errorf("%w: portal record <patient-id>", ErrUsage))
	}

	patientID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return a.fail("Invalid patient ID", err)
	}

	record, err := a.client.GetPatientRecord(ctx, patientID)
	if err != nil {
		return a.fail("Failed to load patient record", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Patient:\t%s %s\n", record.Profile.FirstName, record.Profile.LastName)
	fmt.Fprintf(tw, "Date of birth:\t%s\n", record.Patient.DateOfBirth)
	fmt.Fprintf(tw, "Age:\t%d\n", record.Patient.Age)
	if record.Profile.Phone != nil {
		fmt.Fprintf(tw, "Phone:\t%s\n", *record.Profile.Phone)
	}
	if record.LastVisit != nil {
		fmt.Fprintf(tw, "Last visit:\t%s\n", record.LastVisit.Format("2006-01-02"))
	}
	fmt.Fprintf(tw, "Allergies:\t%s\n", listOrNone(record.Patient.Allergies))
	if err := tw.Flush(); err != nil {
		return err
	}

	if record.Patient.MedicalHistory != nil && *record.Patient.MedicalHistory != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Medical history")
		fmt.Fprintf(a.out, "  %s\n", *record.Patient.MedicalHistory)
	}

	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Prescriptions (%d)\n", len(record.Prescriptions))
	writePrescriptions(a.out, record.Prescriptions)
	return nil
}
