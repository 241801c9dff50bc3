package workflow

// Status is a lifecycle state of a document. The set of valid values is fixed
// per entity kind by its Machine.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusVerified  Status = "verified"
	StatusApproved  Status = "approved"
	StatusArchived  Status = "archived"
	StatusOrdered   Status = "ordered"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
	StatusPaid      Status = "paid"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
	StatusAwarded   Status = "awarded"
	StatusSent      Status = "sent"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusExpected  Status = "expected"
	StatusReceived  Status = "received"
	StatusRejected  Status = "rejected"
)

// Action names a transition. For endpoint transitions it doubles as the
// default URL segment.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionVerify  Action = "verify"
	ActionArchive Action = "archive"
	ActionCancel  Action = "cancel"
	ActionOrder   Action = "order"
	ActionFulfill Action = "fulfill"
	ActionPay     Action = "pay"
	ActionPublish Action = "publish"
	ActionClose   Action = "close"
	ActionAward   Action = "award"
	ActionReceive Action = "receive"
)

// Role is the caller's organisational role, used to gate transitions.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleEngineer   Role = "engineer"
	RoleAccountant Role = "accountant"
	RoleBuyer      Role = "buyer"
	RoleViewer     Role = "viewer"
)

func RoleLabel(r Role) string {
	switch r {
	case RoleAdmin:
		return "администратор"
	case RoleManager:
		return "руководитель проекта"
	case RoleEngineer:
		return "инженер ПТО"
	case RoleAccountant:
		return "бухгалтер"
	case RoleBuyer:
		return "снабженец"
	case RoleViewer:
		return "наблюдатель"
	default:
		return string(r)
	}
}

type Color string

const (
	ColorGray   Color = "gray"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
)

// Badge is the display form of a status.
type Badge struct {
	Label string
	Color Color
}

var vocabulary = map[Status]Badge{
	StatusDraft:     {Label: "Черновик", Color: ColorGray},
	StatusReview:    {Label: "На согласовании", Color: ColorYellow},
	StatusVerified:  {Label: "Проверен", Color: ColorBlue},
	StatusApproved:  {Label: "Утверждён", Color: ColorGreen},
	StatusArchived:  {Label: "В архиве", Color: ColorGray},
	StatusOrdered:   {Label: "Заказано", Color: ColorBlue},
	StatusFulfilled: {Label: "Исполнено", Color: ColorGreen},
	StatusCancelled: {Label: "Отменено", Color: ColorRed},
	StatusPaid:      {Label: "Оплачен", Color: ColorGreen},
	StatusPublished: {Label: "Опубликован", Color: ColorBlue},
	StatusClosed:    {Label: "Приём заявок закрыт", Color: ColorYellow},
	StatusAwarded:   {Label: "Победитель определён", Color: ColorGreen},
	StatusSent:      {Label: "Отправлен поставщику", Color: ColorBlue},
	StatusConfirmed: {Label: "Подтверждён", Color: ColorPurple},
	StatusDelivered: {Label: "Доставлен", Color: ColorGreen},
	StatusExpected:  {Label: "Ожидается", Color: ColorYellow},
	StatusReceived:  {Label: "Принята", Color: ColorGreen},
	StatusRejected:  {Label: "Отклонена", Color: ColorRed},
}

// RawBadge is how a status outside every known vocabulary is displayed.
func RawBadge(s Status) Badge {
	return Badge{Label: string(s), Color: ColorGray}
}
