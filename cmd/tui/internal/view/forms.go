package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/order"
	"github.com/MrJamesThe3rd/procura/internal/organization"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/tender"
	"github.com/MrJamesThe3rd/procura/internal/volume"
)

func organizationOptions(ctx context.Context, svc *Services, role organization.Role) ([]huh.Option[uuid.UUID], error) {
	orgs, err := svc.Organizations.ByRole(ctx, role, "")
	if err != nil {
		return nil, err
	}

	if len(orgs) == 0 {
		return nil, fmt.Errorf("организации с ролью %s: %w", role, errNoOptions)
	}

	opts := make([]huh.Option[uuid.UUID], len(orgs))
	for i, o := range orgs {
		opts[i] = huh.NewOption(o.String(), o.ID)
	}

	return opts, nil
}

func validDate(s string) error {
	if _, err := document.ParseDate(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("дата в формате ДД.ММ.ГГГГ")
	}

	return nil
}

func optionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	return validDate(s)
}

func mustDate(s string) document.Date {
	d, _ := document.ParseDate(strings.TrimSpace(s))
	return d
}

func selectID(title string, opts []huh.Option[uuid.UUID], v *uuid.UUID) *huh.Select[uuid.UUID] {
	return huh.NewSelect[uuid.UUID]().
		Title(title).
		Options(opts...).
		Height(8).
		Value(v).
		Validate(func(id uuid.UUID) error {
			if id == uuid.Nil {
				return fmt.Errorf("выберите значение")
			}

			return nil
		})
}

func newBOQForm(svc *Services, projectID uuid.UUID) View {
	var title, notes string

	return newForm(svc, formSpec{
		title: "Новая ведомость объёмов работ",
		build: func(context.Context) (*huh.Form, error) {
			return huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Наименование").Value(&title).Validate(required("наименование")),
				huh.NewText().Title("Примечание").Value(&notes),
			)), nil
		},
		submit: func(ctx context.Context) (string, error) {
			b, err := svc.BOQs.Mutations.Create(ctx, boq.CreateParams{
				ProjectID: projectID,
				Title:     strings.TrimSpace(title),
				Notes:     strings.TrimSpace(notes),
			})
			if err != nil {
				return "", err
			}

			return "Создана ВОР " + b.Number, nil
		},
	})
}

// newVolumeUpload uploads a new volume, or a new revision of prev.
func newVolumeUpload(svc *Services, projectID uuid.UUID, prev *volume.Volume) View {
	var code, title, discipline, path string

	heading := "Загрузка тома РД"
	revision := 0

	if prev != nil {
		code, title, discipline = prev.Code, prev.Title, prev.Discipline
		heading = "Новая редакция " + prev.Code
		revision = prev.Version + 1
	}

	return newForm(svc, formSpec{
		title: heading,
		build: func(context.Context) (*huh.Form, error) {
			return huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Шифр").Value(&code).Validate(required("шифр")),
				huh.NewInput().Title("Наименование").Value(&title).Validate(required("наименование")),
				huh.NewInput().Title("Марка / раздел").Placeholder("КЖ, АР, ОВ…").Value(&discipline),
				huh.NewInput().Title("Файл").Placeholder("/path/to/volume.pdf").Value(&path).Validate(func(s string) error {
					info, err := os.Stat(strings.TrimSpace(s))
					if err != nil || info.IsDir() {
						return fmt.Errorf("файл не найден")
					}

					return nil
				}),
			)), nil
		},
		submit: func(ctx context.Context) (string, error) {
			f, err := os.Open(strings.TrimSpace(path))
			if err != nil {
				return "", err
			}
			defer f.Close()

			v, err := svc.Volumes.Upload(ctx, volume.UploadParams{
				ProjectID:  projectID,
				Code:       strings.TrimSpace(code),
				Title:      strings.TrimSpace(title),
				Discipline: strings.TrimSpace(discipline),
				Revision:   revision,
				FileName:   filepath.Base(f.Name()),
				File:       f,
			})
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("Том %s загружен (ред. %d)", v.Code, v.Version), nil
		},
	})
}

func newLetterForm(svc *Services, pr request.PurchaseRequest) View {
	var (
		supplier   uuid.UUID
		amountText string
		notes      string
	)

	if pr.Total.Valid {
		amountText = pr.Total.Decimal.StringFixed(2)
	}

	return newForm(svc, formSpec{
		title: "Распределительное письмо к заявке " + pr.Number,
		build: func(ctx context.Context) (*huh.Form, error) {
			opts, err := organizationOptions(ctx, svc, organization.RoleSupplier)
			if err != nil {
				return nil, err
			}

			return huh.NewForm(huh.NewGroup(
				selectID("Поставщик", opts, &supplier),
				huh.NewInput().Title("Сумма, ₽").Value(&amountText).Validate(positiveAmount),
				huh.NewText().Title("Примечание").Value(&notes),
			)), nil
		},
		submit: func(ctx context.Context) (string, error) {
			amount, err := parseAmount(amountText)
			if err != nil {
				return "", err
			}

			l, err := svc.Requests.Letters.Mutations.Create(ctx, request.LetterParams{
				RequestID:  pr.ID,
				SupplierID: supplier,
				Amount:     amount,
				Notes:      strings.TrimSpace(notes),
			})
			if err != nil {
				return "", err
			}

			return "Создано письмо " + l.Number, nil
		},
	})
}

var hundred = decimal.NewFromInt(100)

// newAdvanceForm asks for a percentage of the request total; the amount is
// derived from it unless entered explicitly.
func newAdvanceForm(svc *Services, pr request.PurchaseRequest) View {
	var (
		supplier    uuid.UUID
		percentText = "30"
		amountText  string
		dueText     = time.Now().AddDate(0, 0, 14).Format("02.01.2006")
	)

	return newForm(svc, formSpec{
		title: "Аванс по заявке " + pr.Number,
		build: func(ctx context.Context) (*huh.Form, error) {
			opts, err := organizationOptions(ctx, svc, organization.RoleSupplier)
			if err != nil {
				return nil, err
			}

			amountHint := "рассчитается от суммы заявки"
			if !pr.Total.Valid {
				amountHint = "сумма заявки неизвестна, укажите явно"
			}

			return huh.NewForm(huh.NewGroup(
				selectID("Поставщик", opts, &supplier),
				huh.NewInput().Title("Процент аванса").Value(&percentText).Validate(positiveAmount),
				huh.NewInput().Title("Сумма, ₽").Description(amountHint).Value(&amountText).Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						if pr.Total.Valid {
							return nil
						}

						return errAmount
					}

					return positiveAmount(s)
				}),
				huh.NewInput().Title("Срок оплаты").Value(&dueText).Validate(validDate),
			)), nil
		},
		submit: func(ctx context.Context) (string, error) {
			percent, err := parseAmount(percentText)
			if err != nil {
				return "", err
			}

			var amount decimal.Decimal

			if strings.TrimSpace(amountText) == "" {
				amount = pr.Total.Decimal.Mul(percent).Div(hundred).Round(2)
			} else if amount, err = parseAmount(amountText); err != nil {
				return "", err
			}

			a, err := svc.Requests.Advances.Mutations.Create(ctx, request.AdvanceParams{
				RequestID:  pr.ID,
				SupplierID: supplier,
				Amount:     amount,
				Percent:    percent,
				DueDate:    mustDate(dueText),
			})
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("Создан аванс %s на %s", a.Number, FormatMoney(a.Amount)), nil
		},
	})
}

func newDeliveryForm(svc *Services, o order.PurchaseOrder) View {
	expected := o.DeliveryDate.String()

	var waybill string

	return newForm(svc, formSpec{
		title: "Поставка по заказу " + o.Number,
		build: func(context.Context) (*huh.Form, error) {
			return huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Ожидается").Value(&expected).Validate(validDate),
				huh.NewInput().Title("№ накладной").Value(&waybill),
			)), nil
		},
		submit: func(ctx context.Context) (string, error) {
			d, err := svc.Orders.Deliveries.Mutations.Create(ctx, order.DeliveryParams{
				OrderID:    o.ID,
				ExpectedAt: mustDate(expected),
				WaybillNo:  strings.TrimSpace(waybill),
			})
			if err != nil {
				return "", err
			}

			return "Поставка " + d.Number + " ожидается " + d.ExpectedAt.String(), nil
		},
	})
}

func newTenderForm(svc *Services, projectID uuid.UUID) View {
	var title, deadline, notes string

	return newForm(svc, formSpec{
		title: "Новый тендер",
		build: func(context.Context) (*huh.Form, error) {
			return huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Предмет закупки").Value(&title).Validate(required("предмет закупки")),
				huh.NewInput().Title("Приём заявок до").Placeholder("ДД.ММ.ГГГГ").Value(&deadline).Validate(optionalDate),
				huh.NewText().Title("Примечание").Value(&notes),
			)), nil
		},
		submit: func(ctx context.Context) (string, error) {
			p := tender.CreateParams{
				ProjectID: projectID,
				Title:     strings.TrimSpace(title),
				Notes:     strings.TrimSpace(notes),
			}

			if strings.TrimSpace(deadline) != "" {
				t := mustDate(deadline).Time
				p.Deadline = &t
			}

			t, err := svc.Tenders.Mutations.Create(ctx, p)
			if err != nil {
				return "", err
			}

			return "Создан тендер " + t.Number, nil
		},
	})
}

func newOrderForm(svc *Services, projectID uuid.UUID) View {
	var (
		supplier uuid.UUID
		date     string
		notes    string
	)

	return newForm(svc, formSpec{
		title: "Новый заказ поставщику",
		build: func(ctx context.Context) (*huh.Form, error) {
			opts, err := organizationOptions(ctx, svc, organization.RoleSupplier)
			if err != nil {
				return nil, err
			}

			return huh.NewForm(huh.NewGroup(
				selectID("Поставщик", opts, &supplier),
				huh.NewInput().Title("Дата поставки").Placeholder("ДД.ММ.ГГГГ").Value(&date).Validate(validDate),
				huh.NewText().Title("Примечание").Value(&notes),
			)), nil
		},
		submit: func(ctx context.Context) (string, error) {
			o, err := svc.Orders.Mutations.Create(ctx, order.CreateParams{
				ProjectID:    projectID,
				SupplierID:   supplier,
				DeliveryDate: mustDate(date),
				Notes:        strings.TrimSpace(notes),
			})
			if err != nil {
				return "", err
			}

			return "Создан заказ " + o.Number, nil
		},
	})
}

// newAwardForm picks the winner of a closed tender. The justification was
// already asked for with the action.
func newAwardForm(svc *Services, t tender.Tender, justification string) View {
	var winner uuid.UUID

	if t.WinnerID != nil {
		winner = *t.WinnerID
	}

	return newForm(svc, formSpec{
		title: "Победитель тендера " + t.Number,
		build: func(ctx context.Context) (*huh.Form, error) {
			opts, err := organizationOptions(ctx, svc, organization.RoleSupplier)
			if err != nil {
				return nil, err
			}

			return huh.NewForm(huh.NewGroup(
				selectID("Поставщик", opts, &winner).Description(justification),
			)), nil
		},
		submit: func(ctx context.Context) (string, error) {
			awarded, err := svc.Tenders.Award(ctx, &t, winner, justification)
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("Тендер %s: победитель определён", awarded.Number), nil
		},
	})
}
