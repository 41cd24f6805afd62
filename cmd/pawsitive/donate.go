package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/app"
	"github.com/pawsitive-drive/pawsitive/internal/donation"
)

func runDonate(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("donate")
	amount := fs.String("amount", "", "donation amount in pesos")
	target := fs.String("target", "general", "donation target: general or pet")
	pet := fs.String("pet", "", "pet id or name when --target=pet")
	method := fs.String("method", "card", "payment method: card or paypal")
	showReceipt := fs.Bool("receipt", false, "print the receipt after a successful donation")
	yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	flow := a.Donations
	flow.SetAmount(*amount)
	kind, ref, err := donationTarget(*target, *pet)
	if err != nil {
		return err
	}
	flow.SetTarget(kind, ref)
	if err := flow.Advance(); err != nil {
		return err
	}

	m, err := donation.ParsePaymentMethod(*method)
	if err != nil {
		return err
	}
	flow.SetPaymentMethod(m)

	intent := flow.Intent()
	fmt.Printf("Donating %s via %s", *amount, m.Label())
	if intent.Target == donation.TargetPet && intent.TargetRef != "" {
		fmt.Printf(" for %s", intent.TargetRef)
	}
	fmt.Println()
	if !*yes && !strings.EqualFold(prompt("Confirm? [y/N] "), "y") {
		flow.Edit()
		fmt.Println("Cancelled")
		return nil
	}

	outcome, err := flow.Confirm(ctx)
	if err != nil {
		return err
	}
	fmt.Println(outcome.Message)
	fmt.Printf("Donation #%d recorded. Total donated: %s\n", outcome.Donation.DonationID, donation.FormatPeso(outcome.Total))
	if *showReceipt {
		receipt, err := flow.Receipt(ctx)
		if err != nil {
			return err
		}
		printReceipt(receipt)
	} else {
		fmt.Printf("Run 'pawsitive receipt %d' to view the receipt.\n", outcome.Donation.DonationID)
	}
	return nil
}

func runReceipt(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("receipt")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	donationID, err := idArg(fs.Args(), "donation id")
	if err != nil {
		return err
	}
	receipt, err := a.Donations.ReceiptFor(ctx, donationID)
	if err != nil {
		return err
	}
	printReceipt(receipt)
	return nil
}

func runDonations(ctx context.Context, a *app.App, args []string) error {
	if help, err := parse(newFlagSet("donations"), args); help || err != nil {
		return err
	}
	donations, err := a.Donations.History(ctx)
	if err != nil {
		return err
	}
	printDonations(donations)
	return nil
}

func runTotal(ctx context.Context, a *app.App, args []string) error {
	if help, err := parse(newFlagSet("total"), args); help || err != nil {
		return err
	}
	fmt.Println(donation.FormatPeso(a.Total.Value()))
	return nil
}

func printReceipt(r *api.Receipt) {
	fmt.Printf("Receipt %s\n", r.ReceiptNumber)
	fmt.Printf("  date:        %s\n", r.ReceiptDate)
	fmt.Printf("  donor:       %s <%s>\n", r.DonorName, r.DonorEmail)
	if r.DonorAddress != "" {
		fmt.Printf("  address:     %s\n", r.DonorAddress)
	}
	if r.Donation != nil {
		fmt.Printf("  amount:      %s\n", donation.FormatPeso(r.Donation.Amount))
		if r.Donation.Pet != nil {
			fmt.Printf("  for:         %s (#%d)\n", r.Donation.Pet.Name, r.Donation.Pet.PetID)
		}
	}
	fmt.Printf("  method:      %s\n", r.PaymentMethod)
	fmt.Printf("  status:      %s\n", r.Status)
	if r.TransactionID != "" {
		fmt.Printf("  transaction: %s\n", r.TransactionID)
	}
}

func printDonations(donations []api.Donation) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tMETHOD\tDONOR\tPET\tSTATUS")
	for _, d := range donations {
		donor, pet := "-", "-"
		if d.User != nil {
			donor = d.User.Name
		}
		if d.Pet != nil {
			pet = d.Pet.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.DonationID, d.DonationDate, donation.FormatPeso(d.Amount), d.PaymentMethod, donor, pet, d.Status)
	}
	w.Flush()
}

// donationTarget maps the --target and --pet flags to a flow target.
func donationTarget(target, pet string) (donation.TargetKind, string, error) {
	pet = strings.TrimSpace(pet)
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "general", "":
		if pet != "" {
			return donation.TargetGeneral, "", fmt.Errorf("--pet requires --target=pet")
		}
		return donation.TargetGeneral, "", nil
	case "pet":
		return donation.TargetPet, pet, nil
	default:
		return donation.TargetGeneral, "", fmt.Errorf("unknown target %q", target)
	}
}
