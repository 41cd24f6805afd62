package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/app"
)

func runAdmin(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		printAdminUsage()
		return fmt.Errorf("admin subcommand required")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "pets":
		return runAdminPets(ctx, a, rest)
	case "add-pet":
		return runAdminAddPet(ctx, a, rest)
	case "pet-status":
		return runAdminPetStatus(ctx, a, rest)
	case "delete-pet":
		return runAdminDeletePet(ctx, a, rest)
	case "applications":
		return runAdminApplications(ctx, a, rest)
	case "review":
		return runAdminReview(ctx, a, rest)
	case "donations":
		return runAdminDonations(ctx, a, rest)
	case "-h", "--help", "help":
		printAdminUsage()
		return nil
	default:
		printAdminUsage()
		return fmt.Errorf("unknown admin subcommand: %q", sub)
	}
}

func printAdminUsage() {
	fmt.Fprintf(os.Stderr, `Usage: pawsitive admin <subcommand> [flags]

Subcommands:
  pets                        List every pet
  add-pet --name ... [flags]  Add a pet
  pet-status <id> <status>    Set a pet's status (Available, Pending, Adopted)
  delete-pet <id>             Delete a pet
  applications                List every adoption application
  review <id> <status>        Approve or reject an application
  donations                   List every donation
`)
}

func runAdminPets(ctx context.Context, a *app.App, args []string) error {
	if help, err := parse(newFlagSet("admin pets"), args); help || err != nil {
		return err
	}
	pets, err := a.Admin.Pets(ctx)
	if err != nil {
		return err
	}
	printPets(pets)
	return nil
}

func runAdminAddPet(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("admin add-pet")
	var in api.PetInput
	fs.StringVar(&in.Name, "name", "", "pet name")
	fs.StringVar(&in.Species, "species", "", "species")
	fs.StringVar(&in.Breed, "breed", "", "breed")
	fs.IntVar(&in.Age, "age", 0, "age in years")
	fs.StringVar(&in.Gender, "gender", "", "gender")
	fs.StringVar(&in.Status, "status", "", "status (default Available)")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.StringVar(&in.ImageURL, "image-url", "", "image URL")
	image := fs.String("image", "", "upload an image file and use it as the image URL")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	if *image != "" {
		f, err := os.Open(*image)
		if err != nil {
			return err
		}
		res, err := a.Admin.UploadPetImage(ctx, filepath.Base(*image), f)
		f.Close()
		if err != nil {
			return err
		}
		in.ImageURL = res.URL
	}

	pet, err := a.Admin.AddPet(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Pet #%d %s added (%s)\n", pet.PetID, pet.Name, pet.Status)
	return nil
}

func runAdminPetStatus(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("admin pet-status")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: pawsitive admin pet-status <id> <status>")
	}
	petID, err := idArg(fs.Args()[:1], "pet id")
	if err != nil {
		return err
	}
	pet, err := a.Admin.SetPetStatus(ctx, petID, fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Printf("Pet #%d %s is now %s\n", pet.PetID, pet.Name, pet.Status)
	return nil
}

func runAdminDeletePet(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("admin delete-pet")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	petID, err := idArg(fs.Args(), "pet id")
	if err != nil {
		return err
	}
	if err := a.Admin.DeletePet(ctx, petID); err != nil {
		return err
	}
	fmt.Printf("Pet #%d deleted\n", petID)
	return nil
}

func runAdminApplications(ctx context.Context, a *app.App, args []string) error {
	if help, err := parse(newFlagSet("admin applications"), args); help || err != nil {
		return err
	}
	apps, err := a.Admin.Applications(ctx)
	if err != nil {
		return err
	}
	printApplications(apps)
	return nil
}

func runAdminReview(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("admin review")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: pawsitive admin review <id> <Approved|Rejected>")
	}
	appID, err := idArg(fs.Args()[:1], "application id")
	if err != nil {
		return err
	}
	application, err := a.Admin.ReviewApplication(ctx, appID, fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Printf("Application #%d is now %s\n", application.ApplicationID, application.Status)
	return nil
}

func runAdminDonations(ctx context.Context, a *app.App, args []string) error {
	if help, err := parse(newFlagSet("admin donations"), args); help || err != nil {
		return err
	}
	donations, err := a.Admin.Donations(ctx)
	if err != nil {
		return err
	}
	printDonations(donations)
	return nil
}
