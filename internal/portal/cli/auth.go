package cli

import (
	"context"
	"fmt"

	"healgenie-portal/internal/portal/session"
)

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	email := fs.StringP("email", "e", "", "account email")
	password := fs.StringP("password", "p", "", "account password, prompted when omitted")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = a.prompt("Email"); err != nil {
			return a.fail("Login failed", err)
		}
	}
	if *password == "" {
		if *password, err = a.password("Password"); err != nil {
			return a.fail("Login failed", err)
		}
	}

	if err := a.store.Login(ctx, *email, *password); err != nil {
		return err
	}
	if err := a.store.Settle(ctx); err != nil {
		return err
	}

	if identity := a.store.Identity(); identity != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", identity.User.Email)
	}
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	var in session.RegisterInput

	fs := a.flagSet("register")
	fs.StringVar(&in.FirstName, "first-name", "", "first name")
	fs.StringVar(&in.LastName, "last-name", "", "last name")
	fs.StringVarP(&in.Email, "email", "e", "", "account email")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVarP(&in.Password, "password", "p", "", "password, prompted when omitted")
	fs.StringVar(&in.ConfirmPassword, "confirm-password", "", "password again, prompted when omitted")
	fs.StringVarP(&in.UserType, "type", "t", "patient", "account type: doctor or patient")
	fs.StringVar(&in.Designation, "designation", "", "doctor's designation")
	fs.StringVar(&in.Specialty, "specialty", "", "doctor's specialty")
	experience := fs.Int("experience", 0, "doctor's years of experience")
	fs.StringVar(&in.DateOfBirth, "dob", "", "patient's date of birth (YYYY-MM-DD)")
	age := fs.Int("age", 0, "patient's age")
	fs.StringSliceVar(&in.Allergies, "allergies", nil, "patient's allergies, comma separated")
	symbol := fs.Int("symbol", 0, "profile symbol id, see \"portal symbols\"")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.Changed("experience") {
		in.Experience = experience
	}
	if fs.Changed("age") {
		in.Age = age
	}
	if fs.Changed("symbol") {
		in.ProfileSymbolID = symbol
	}

	var err error
	if in.Password == "" {
		if in.Password, err = a.password("Password"); err != nil {
			return a.fail("Registration failed", err)
		}
	}
	if in.ConfirmPassword == "" {
		if in.ConfirmPassword, err = a.password("Confirm password"); err != nil {
			return a.fail("Registration failed", err)
		}
	}

	if err := a.store.Register(ctx, in); err != nil {
		return err
	}
	if err := a.store.Settle(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s as a %s\n", in.Email, in.UserType)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := a.flagSet("logout").Parse(args); err != nil {
		return err
	}
	if a.store.Identity() == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	return a.store.Settle(ctx)
}
