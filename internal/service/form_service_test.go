package service

import (
	"encoding/json"
	"testing"

	"github.com/sitecms/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactFormInput() FormInput {
	return FormInput{
		Name:              ptr("Contact Us"),
		NotificationEmail: ptr("IR@Example.com"),
		Fields: &[]FieldInput{
			{Name: ptr("full_name"), Label: ptr("Full name"), IsRequired: ptr(true), MaxLength: ptr(80)},
			{Name: ptr("email"), Label: ptr("Email"), FieldType: ptr(db.FieldTypeEmail), IsRequired: ptr(true)},
			{Label: ptr("Inquiry Type"), FieldType: ptr(db.FieldTypeSelect), Options: []string{"Investment", "Press", "Press"}},
			{Name: ptr("message"), Label: ptr("Message"), FieldType: ptr(db.FieldTypeTextarea), MinLength: ptr(10)},
		},
	}
}

func TestFormServiceCreateWithFields(t *testing.T) {
	svc := NewFormService(newTestDB(t))

	form, err := svc.Create(ctx, contactFormInput())
	require.NoError(t, err)
	assert.Equal(t, "contact-us", form.Slug)
	assert.Equal(t, "ir@example.com", form.NotificationEmail)
	assert.Equal(t, defaultSubmitLabel, form.SubmitLabel)
	require.Len(t, form.Fields, 4)
	assert.Equal(t, "inquiry_type", form.Fields[2].Name)
	assert.Equal(t, []string{"Investment", "Press"}, []string(form.Fields[2].Options))
	assert.Equal(t, 3, form.Fields[3].SortOrder)

	again, err := svc.Create(ctx, FormInput{Name: ptr("Contact Us")})
	require.NoError(t, err)
	assert.Equal(t, "contact-us-2", again.Slug)

	_, err = svc.Create(ctx, FormInput{Name: ptr("Other"), Slug: ptr("contact-us")})
	assert.ErrorIs(t, err, ErrSlugTaken)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, item := range list {
		if item.ID == form.ID {
			assert.Equal(t, int64(4), item.FieldCount)
		}
	}
}

func TestFormServiceCreateIsAtomic(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewFormService(gdb)

	input := contactFormInput()
	fields := append(*input.Fields, FieldInput{Name: ptr("email"), Label: ptr("Duplicate")})
	input.Fields = &fields

	_, err := svc.Create(ctx, input)
	vErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, vErr.Fields, "fields[4].name")

	bad := FormInput{Name: ptr("Broken"), Fields: &[]FieldInput{
		{Name: ptr("choice"), Label: ptr("Choice"), FieldType: ptr(db.FieldTypeRadio)},
		{Name: ptr("size"), Label: ptr("Size"), MinLength: ptr(5), MaxLength: ptr(2)},
	}}
	_, err = svc.Create(ctx, bad)
	vErr, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, vErr.Fields, "fields[0].options")
	assert.Contains(t, vErr.Fields, "fields[1].min_length")

	var forms, formFields int64
	gdb.Model(&db.Form{}).Count(&forms)
	gdb.Model(&db.FormField{}).Count(&formFields)
	assert.Zero(t, forms)
	assert.Zero(t, formFields)
}

func TestFormServiceUpdateReplacesFields(t *testing.T) {
	svc := NewFormService(newTestDB(t))

	form, err := svc.Create(ctx, contactFormInput())
	require.NoError(t, err)

	renamed, err := svc.Update(ctx, form.ID, FormInput{Description: ptr("Reach the team")})
	require.NoError(t, err)
	assert.Len(t, renamed.Fields, 4, "fields untouched when absent from the payload")
	assert.Equal(t, "Contact Us", renamed.Name)

	replaced, err := svc.Update(ctx, form.ID, FormInput{Fields: &[]FieldInput{
		{Name: ptr("company"), Label: ptr("Company"), IsRequired: ptr(true)},
	}})
	require.NoError(t, err)
	require.Len(t, replaced.Fields, 1)
	assert.Equal(t, "company", replaced.Fields[0].Name)
	assert.Equal(t, "Reach the team", replaced.Description)

	_, err = svc.Update(ctx, form.ID, FormInput{Fields: &[]FieldInput{{Name: ptr("1bad"), Label: ptr("Bad")}}})
	_, ok := AsValidationError(err)
	require.True(t, ok)

	reloaded, err := svc.Get(ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Fields, 1, "failed replacement keeps the previous fields")
}

func TestFormServiceUpdateEmptySlugFollowsNewName(t *testing.T) {
	svc := NewFormService(newTestDB(t))

	form, err := svc.Create(ctx, FormInput{Name: ptr("Contact Us")})
	require.NoError(t, err)
	require.Equal(t, "contact-us", form.Slug)

	updated, err := svc.Update(ctx, form.ID, FormInput{Name: ptr("Press Inquiries"), Slug: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Press Inquiries", updated.Name)
	assert.Equal(t, "press-inquiries", updated.Slug)

	kept, err := svc.Update(ctx, form.ID, FormInput{Slug: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "press-inquiries", kept.Slug)
}

func TestFormServiceSubmitValidatesAndStores(t *testing.T) {
	svc := NewFormService(newTestDB(t))

	form, err := svc.Create(ctx, contactFormInput())
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, form.Slug, map[string]interface{}{
		"email":        "nope",
		"inquiry_type": "Other",
		"message":      "short",
	}, "127.0.0.1", "test")
	vErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, msgRequired, vErr.Fields["full_name"])
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "inquiry_type")
	assert.Contains(t, vErr.Fields, "message")

	submitted, submission, err := svc.Submit(ctx, form.Slug, map[string]interface{}{
		"full_name":    "Jane Doe",
		"email":        "Jane@Example.com",
		"inquiry_type": "Press",
		"message":      "I would like to talk about your fund.",
		"spam":         "dropped",
	}, "10.0.0.1", "Mozilla/5.0")
	require.NoError(t, err)
	assert.Equal(t, defaultSuccessMessage, submitted.SuccessMessage)
	assert.Equal(t, "10.0.0.1", submission.IPAddress)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(submission.Data, &data))
	assert.Equal(t, "jane@example.com", data["email"])
	assert.NotContains(t, data, "spam")

	list, err := svc.Submissions(ctx, form.ID, SubmissionFilter{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, list.Submissions, 1)

	read, err := svc.MarkRead(ctx, submission.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	list, err = svc.Submissions(ctx, form.ID, SubmissionFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, list.Submissions)

	require.NoError(t, svc.DeleteSubmission(ctx, submission.ID))
	assert.ErrorIs(t, svc.DeleteSubmission(ctx, submission.ID), ErrSubmissionNotFound)
}

func TestFormServiceInactiveFormRejectsSubmissions(t *testing.T) {
	svc := NewFormService(newTestDB(t))

	input := contactFormInput()
	input.IsActive = ptr(false)
	form, err := svc.Create(ctx, input)
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, form.Slug, map[string]interface{}{}, "", "")
	assert.ErrorIs(t, err, ErrFormNotFound)

	_, err = svc.GetBySlug(ctx, form.Slug, true)
	assert.ErrorIs(t, err, ErrFormNotFound)

	_, err = svc.GetBySlug(ctx, form.Slug, false)
	assert.NoError(t, err)
}

func TestFormServiceDeleteCascades(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewFormService(gdb)

	form, err := svc.Create(ctx, contactFormInput())
	require.NoError(t, err)
	_, _, err = svc.Submit(ctx, form.Slug, map[string]interface{}{"full_name": "A", "email": "a@b.co"}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, form.ID))

	var fields, submissions int64
	gdb.Model(&db.FormField{}).Count(&fields)
	gdb.Model(&db.FormSubmission{}).Count(&submissions)
	assert.Zero(t, fields)
	assert.Zero(t, submissions)

	assert.ErrorIs(t, svc.Delete(ctx, form.ID), ErrFormNotFound)
}
