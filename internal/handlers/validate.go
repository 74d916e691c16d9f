package handlers

import (
	"fmt"
	"unicode/utf8"
)

// Length limits for free-text fields. The stores check presence; these
// keep a single request from writing unbounded text.
const (
	maxNameLen        = 200
	maxSlugLen        = 200
	maxDescriptionLen = 5_000
	maxImagePathLen   = 500
	maxImagesPerItem  = 50
)

// validateLength returns a bad-request error when s has more than max runes.
func validateLength(field, s string, max int) error {
	if utf8.RuneCountInString(s) > max {
		return fmt.Errorf("%w: %s is too long (max %d characters)", errBadRequest, field, max)
	}
	return nil
}

// validateCategoryFields checks the text fields of a category request.
func validateCategoryFields(name, slug string, imagePath *string) error {
	if err := validateLength("name", name, maxNameLen); err != nil {
		return err
	}
	if err := validateLength("slug", slug, maxSlugLen); err != nil {
		return err
	}
	if imagePath != nil {
		return validateLength("image_path", *imagePath, maxImagePathLen)
	}
	return nil
}

// validateProductFields checks the text fields of a product request.
func validateProductFields(name string, description *string, images []string) error {
	if err := validateLength("name", name, maxNameLen); err != nil {
		return err
	}
	if description != nil {
		if err := validateLength("description", *description, maxDescriptionLen); err != nil {
			return err
		}
	}
	if len(images) > maxImagesPerItem {
		return fmt.Errorf("%w: at most %d images per product", errBadRequest, maxImagesPerItem)
	}
	for _, img := range images {
		if err := validateLength("image path", img, maxImagePathLen); err != nil {
			return err
		}
	}
	return nil
}
