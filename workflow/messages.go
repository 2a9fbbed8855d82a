package workflow

import (
	"fmt"
	"strings"

	"github.com/BaSui01/onboardflow/extraction"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/validation"
)

// 回复模板。每种错误类型只对应一个模板。

const (
	msgWelcome       = "Hi! I can answer questions or onboard a new employee. Type '%s' to start onboarding."
	msgChooseMethod  = "Welcome to the employee onboarding flow! How would you like to provide employee details? Reply 'upload' to send a spreadsheet or 'manual' to type them in."
	msgAwaitUpload   = "Please upload the employee spreadsheet (CSV, TSV or XLSX), or paste the employee details as text."
	msgManualStart   = "Let's add an employee manually."
	msgCancelled     = "Onboarding cancelled. The draft was discarded."
	msgNothingToStop = "There is no onboarding in progress."
	msgReviewFooter  = "Reply 'save' to store this record, 'edit <field> <value>' to change a field, 'manual' to add another employee manually, or 'cancel' to discard it."
	msgEditUsage     = "To change a field send 'edit <field> <value>' or '<field>: <value>', for example 'edit phone 555-123-4567'. Fields: name, phone, designation, salary."
	msgOnboardAgain  = "Type '%s' to onboard another employee."
	msgOpCancelled   = "The previous operation was cancelled before it finished."
	msgPersistFailed = "I could not save the record because the record store is unavailable. Your draft is kept, reply 'save' to try again."
	msgRowsSkipped   = "Only the first %d row(s) of the file were read; %d more row(s) were skipped. Upload them in a separate file."
)

func fieldPrompt(f types.Field) string {
	switch f {
	case types.FieldName:
		return "What is the employee's full name?"
	case types.FieldPhone:
		return "What is their phone number?"
	case types.FieldDesignation:
		return "What is their designation?"
	case types.FieldSalary:
		return "What is their salary?"
	}
	return fmt.Sprintf("What is their %s?", f)
}

func fieldFailed(f types.Field, err error) string {
	return fmt.Sprintf("That %s doesn't look right: %s. %s", strings.ToLower(f.Label()), err.Error(), fieldPrompt(f))
}

func extractionFailed(err error) string {
	e := extraction.AsError(err)
	var reason string
	switch e.Kind {
	case extraction.KindTimeout:
		reason = "the extraction service took too long to answer"
	case extraction.KindUnparsableResponse:
		reason = "I could not find employee details in the extraction result"
	case extraction.KindInvalidInput:
		reason = e.Message
	case extraction.KindCancelled:
		reason = "the extraction was cancelled"
	default:
		reason = "the extraction service is unavailable"
	}
	return fmt.Sprintf("Extraction failed: %s. You can upload again or reply 'manual' to enter the details yourself.", reason)
}

func duplicateRecord(key types.UniquenessKey) string {
	return fmt.Sprintf("An employee with the same %s is already on record, so this draft was not saved. Edit the draft or reply 'cancel'.", keyLabel(key))
}

func keyLabel(k types.UniquenessKey) string {
	switch k {
	case types.KeyName:
		return "name"
	case types.KeyPhoneAndName:
		return "phone number and name"
	}
	return "phone number"
}

func incompleteDraft(missing []types.Field) string {
	return fmt.Sprintf("The draft is missing %s. %s", fieldList(missing), msgEditUsage)
}

func unexpectedInput(s State) string {
	switch s.Kind {
	case StateAwaitingInputMethod:
		return "Please reply 'upload' or 'manual'."
	case StateAwaitingExtraction:
		return msgAwaitUpload
	case StateCollectingManualField:
		return fieldPrompt(s.Field)
	case StateReviewingDraft, StateFailed:
		return msgReviewFooter
	}
	return "I can't do that right now."
}

func committed(rec types.EmployeeRecord) string {
	return fmt.Sprintf("Employee %s was saved successfully!", rec.Name)
}

func fieldList(fs []types.Field) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = strings.ToLower(f.Label())
	}
	return strings.Join(names, ", ")
}

// renderDraft 以多行文本展示草稿
func renderDraft(d *Draft, required []types.Field) string {
	var b strings.Builder
	for _, f := range types.AllFields {
		val := "(missing)"
		if d.Record.Has(f) {
			val = d.Record.Get(f)
			if f == types.FieldSalary {
				val = validation.FormatSalary(*d.Record.Salary)
			}
		} else if !isRequired(required, f) {
			val = "(optional)"
		}
		fmt.Fprintf(&b, "%s: %s", f.Label(), val)
		if err, ok := d.Errors[f]; ok {
			fmt.Fprintf(&b, "  <- %s", err.Error())
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func isRequired(required []types.Field, f types.Field) bool {
	for _, r := range required {
		if r == f {
			return true
		}
	}
	return false
}
