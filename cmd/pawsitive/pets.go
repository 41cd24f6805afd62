package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/app"
	"github.com/skratchdot/open-golang/open"
)

func runPets(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("pets")
	status := fs.String("status", "", "filter by status; \"available\" lists adoptable pets")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	var pets []api.Pet
	var err error
	if strings.EqualFold(*status, "available") {
		pets, err = a.Adoption.Available(ctx)
	} else {
		pets, err = a.Client.ListPets(ctx, *status)
	}
	if err != nil {
		return err
	}
	printPets(pets)
	return nil
}

func runPet(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("pet")
	openImage := fs.Bool("open", false, "open the pet's image in a browser")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	petID, err := idArg(fs.Args(), "pet id")
	if err != nil {
		return err
	}

	pet, err := a.Adoption.Pet(ctx, petID)
	if err != nil {
		return err
	}
	fmt.Printf("#%d %s\n", pet.PetID, pet.Name)
	fmt.Printf("  species: %s\n  breed:   %s\n  age:     %d\n  gender:  %s\n  status:  %s\n",
		pet.Species, pet.Breed, pet.Age, pet.Gender, pet.Status)
	if pet.Description != "" {
		fmt.Printf("  %s\n", pet.Description)
	}
	if pet.ImageURL != "" {
		fmt.Printf("  image:   %s\n", pet.ImageURL)
		if *openImage {
			if err := open.Run(pet.ImageURL); err != nil {
				return fmt.Errorf("open image: %w", err)
			}
		}
	}
	return nil
}

func runAdopt(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("adopt")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	petID, err := idArg(fs.Args(), "pet id")
	if err != nil {
		return err
	}
	application, err := a.Adoption.Apply(ctx, petID)
	if err != nil {
		return err
	}
	fmt.Printf("Application #%d submitted (%s)\n", application.ApplicationID, application.Status)
	return nil
}

func runApplications(ctx context.Context, a *app.App, args []string) error {
	if help, err := parse(newFlagSet("applications"), args); help || err != nil {
		return err
	}
	apps, err := a.Adoption.Mine(ctx)
	if err != nil {
		return err
	}
	printApplications(apps)
	return nil
}

func printPets(pets []api.Pet) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSPECIES\tAGE\tSTATUS")
	for _, p := range pets {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", p.PetID, p.Name, p.Species, p.Age, p.Status)
	}
	w.Flush()
}

func printApplications(apps []api.Application) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPET\tAPPLICANT\tDATE\tSTATUS")
	for _, application := range apps {
		pet, applicant := "-", "-"
		if application.Pet != nil {
			pet = application.Pet.Name
		}
		if application.User != nil {
			applicant = application.User.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			application.ApplicationID, pet, applicant, application.ApplicationDate, application.Status)
	}
	w.Flush()
}

func idArg(args []string, what string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one %s argument", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return id, nil
}
