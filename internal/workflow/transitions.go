package workflow

// Reject sends a document back to draft. The backend has no reject endpoint,
// so it travels as a status patch with the comment stored in notes.
func Reject(from ...Status) Transition {
	return Transition{
		Action:          ActionReject,
		Label:           "Вернуть на доработку",
		From:            from,
		To:              StatusDraft,
		Mode:            ModeStatusPatch,
		CommentRequired: true,
	}
}

func Cancel(from ...Status) Transition {
	return Transition{
		Action: ActionCancel,
		Label:  "Отменить",
		From:   from,
		To:     StatusCancelled,
		Mode:   ModeStatusPatch,
	}
}

func Archive(from ...Status) Transition {
	return Transition{
		Action: ActionArchive,
		Label:  "В архив",
		From:   from,
		To:     StatusArchived,
		Mode:   ModeStatusPatch,
	}
}

// Approve posts to the approve endpoint. Roles restrict who sees the action.
func Approve(from Status, to Status, roles ...Role) Transition {
	return Transition{
		Action: ActionApprove,
		Label:  "Утвердить",
		From:   []Status{from},
		To:     to,
		Mode:   ModeEndpoint,
		Roles:  roles,
	}
}

// Submit moves a draft to review, either through the submit endpoint or as a
// plain status patch depending on what the resource exposes.
func Submit(mode Mode) Transition {
	return Transition{
		Action: ActionSubmit,
		Label:  "Отправить на согласование",
		From:   []Status{StatusDraft},
		To:     StatusReview,
		Mode:   mode,
	}
}
