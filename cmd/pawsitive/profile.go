package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pawsitive-drive/pawsitive/internal/app"
)

func runProfile(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("profile")
	bio := fs.String("bio", "", "set the profile bio")
	picture := fs.String("picture", "", "set the profile picture URL")
	upload := fs.String("upload", "", "upload an image file and use it as the profile picture")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	current, err := a.Profile.Get(ctx)
	if err != nil {
		return err
	}
	if !fs.Changed("bio") && !fs.Changed("picture") && *upload == "" {
		fmt.Printf("bio:     %s\npicture: %s\n", current.Bio, current.ProfilePicture)
		return nil
	}

	newBio, newPicture := current.Bio, current.ProfilePicture
	if fs.Changed("bio") {
		newBio = *bio
	}
	if fs.Changed("picture") {
		newPicture = *picture
	}
	if *upload != "" {
		f, err := os.Open(*upload)
		if err != nil {
			return err
		}
		url, err := a.Profile.UploadPicture(ctx, filepath.Base(*upload), f)
		f.Close()
		if err != nil {
			return err
		}
		newPicture = url
	}

	updated, err := a.Profile.Update(ctx, newBio, newPicture)
	if err != nil {
		return err
	}
	fmt.Printf("Profile updated\nbio:     %s\npicture: %s\n", updated.Bio, updated.ProfilePicture)
	return nil
}
