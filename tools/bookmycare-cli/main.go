package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/libs/client"
	"github.com/Abhishek-Jatav/bookMyCare/libs/config"
	"github.com/Abhishek-Jatav/bookMyCare/libs/grpcx"
	"github.com/fatih/color"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const usage = `usage: bookmycare <command> [flags]

commands:
  register           create an account (-name -email -password -role)
  login              sign in (-email -password)
  logout             forget the stored session
  whoami             show the signed-in user
  providers          list providers
  slots              list a provider's slots (-provider [-date])
  add-slot           PROVIDER: offer a slot (-date -time)
  book               book a slot (-provider -date -time)
  cancel             CUSTOMER: cancel a booking (-id)
  my-bookings        CUSTOMER: list your bookings
  provider-bookings  PROVIDER: list bookings of your slots
  health             probe the API gRPC health endpoint ([-grpc host:port])
`

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
	bookColor = color.New(color.FgYellow)
)

type app struct {
	api     *client.Client
	session *client.SessionStore
	out     io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	sessionPath, err := client.DefaultSessionPath()
	if err != nil {
		fatal(err)
	}
	store := client.NewSessionStore(sessionPath)
	sess, err := store.Load()
	if err != nil {
		fatal(err)
	}

	api := client.New(config.String("BOOKMYCARE_API_URL", client.DefaultBaseURL),
		client.WithToken(sess.Token),
		client.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}),
	)
	a := &app{
		api:     api,
		session: store,
		out:     color.Output,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		cancel()
		fatal(err)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	switch cmd {
	case "register":
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password (min 6 chars)")
		role := fs.String("role", "CUSTOMER", "CUSTOMER or PROVIDER")
		if err := fs.Parse(args); err != nil {
			return err
		}
		res, err := a.api.Register(ctx, client.RegisterRequest{
			Name: *name, Email: *email, Password: *password, Role: strings.ToUpper(*role),
		})
		if err != nil {
			return err
		}
		return a.signedIn(res)

	case "login":
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		res, err := a.api.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		return a.signedIn(res)

	case "logout":
		if err := a.session.Clear(); err != nil {
			return err
		}
		okColor.Fprintln(a.out, "logged out")
		return nil

	case "whoami":
		if _, err := a.require(); err != nil {
			return err
		}
		u, err := a.api.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s <%s> %s (id %d)\n", u.Name, u.Email, u.Role, u.ID)
		return nil

	case "providers":
		providers, err := a.api.Providers(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL")
		for _, p := range providers {
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Email)
		}
		return w.Flush()

	case "slots":
		provider := fs.Int64("provider", 0, "provider id")
		date := fs.String("date", "", "YYYY-MM-DD (optional)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		slots, err := a.api.Slots(ctx, *provider, *date)
		if err != nil {
			return err
		}
		a.printSlots(slots)
		return nil

	case "add-slot":
		date := fs.String("date", "", "YYYY-MM-DD")
		timeSlot := fs.String("time", "", "time slot label, e.g. 10:00-10:30")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if _, err := a.requireRole("PROVIDER"); err != nil {
			return err
		}
		slot, err := a.api.CreateSlot(ctx, *date, *timeSlot)
		if err != nil {
			return err
		}
		okColor.Fprintf(a.out, "slot %d added: %s %s\n", slot.ID, slot.Date, slot.TimeSlot)
		return nil

	case "book":
		provider := fs.Int64("provider", 0, "provider id")
		date := fs.String("date", "", "YYYY-MM-DD")
		timeSlot := fs.String("time", "", "time slot label")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if _, err := a.require(); err != nil {
			return err
		}
		b, err := a.api.Book(ctx, *provider, *date, *timeSlot)
		if err != nil {
			return err
		}
		okColor.Fprintf(a.out, "booked #%d: %s %s\n", b.ID, b.Date, b.TimeSlot)
		return nil

	case "cancel":
		id := fs.Int64("id", 0, "booking id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if _, err := a.requireRole("CUSTOMER"); err != nil {
			return err
		}
		b, err := a.api.Cancel(ctx, *id)
		if err != nil {
			return err
		}
		okColor.Fprintf(a.out, "booking #%d is %s\n", b.ID, b.Status)
		return nil

	case "my-bookings":
		sess, err := a.requireRole("CUSTOMER")
		if err != nil {
			return err
		}
		bookings, err := a.api.CustomerBookings(ctx, sess.User.ID)
		if err != nil {
			return err
		}
		a.printBookings(bookings)
		return nil

	case "provider-bookings":
		sess, err := a.requireRole("PROVIDER")
		if err != nil {
			return err
		}
		bookings, err := a.api.ProviderBookings(ctx, sess.User.ID)
		if err != nil {
			return err
		}
		a.printBookings(bookings)
		return nil

	case "health":
		addr := fs.String("grpc", config.String("BOOKMYCARE_GRPC_ADDR", "localhost:9400"), "api-service gRPC address")
		if err := fs.Parse(args); err != nil {
			return err
		}
		st, err := grpcx.CheckHealth(ctx, *addr, "", grpcx.DialOptions{Timeout: 5 * time.Second})
		if err != nil {
			return err
		}
		if st != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("%s is %s", *addr, st)
		}
		okColor.Fprintf(a.out, "%s is %s\n", *addr, st)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

func (a *app) signedIn(res client.AuthResult) error {
	if err := a.session.Set(client.Session{Token: res.Token, User: res.User}); err != nil {
		return err
	}
	a.api.SetToken(res.Token)
	okColor.Fprintf(a.out, "signed in as %s (%s)\n", res.User.Name, res.User.Role)
	return nil
}

func (a *app) require() (client.Session, error) {
	sess := a.session.Current()
	if !sess.LoggedIn() {
		return client.Session{}, errors.New("not logged in; run `bookmycare login`")
	}
	return sess, nil
}

func (a *app) requireRole(role string) (client.Session, error) {
	sess, err := a.require()
	if err != nil {
		return sess, err
	}
	if sess.User.Role != role {
		return client.Session{}, fmt.Errorf("this command is for %s accounts", strings.ToLower(role))
	}
	return sess, nil
}

func (a *app) printSlots(slots []client.Slot) {
	if len(slots) == 0 {
		dimColor.Fprintln(a.out, "no slots")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tSTATUS")
	for _, s := range slots {
		status := okColor.Sprint("available")
		if s.IsBooked {
			status = bookColor.Sprint("booked")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Date, s.TimeSlot, status)
	}
	_ = w.Flush()
}

func (a *app) printBookings(bookings []client.Booking) {
	if len(bookings) == 0 {
		dimColor.Fprintln(a.out, "no bookings")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROVIDER\tCUSTOMER\tDATE\tTIME\tSTATUS")
	for _, b := range bookings {
		status := okColor.Sprint(b.Status)
		if b.Status != "BOOKED" {
			status = dimColor.Sprint(b.Status)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", b.ID, strconv.FormatInt(b.ProviderID, 10), strconv.FormatInt(b.CustomerID, 10), b.Date, b.TimeSlot, status)
	}
	_ = w.Flush()
}

func fatal(err error) {
	errColor.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
