package view

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/estimate"
	"github.com/MrJamesThe3rd/procura/internal/export"
	"github.com/MrJamesThe3rd/procura/internal/order"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/tender"
	"github.com/MrJamesThe3rd/procura/internal/volume"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

// orgName resolves a counterparty for display. Lookups go through the query
// cache, and a failure only leaves the field empty.
func orgName(ctx context.Context, svc *Services, id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}

	o, err := svc.Organizations.Queries.Get(ctx, id)
	if err != nil {
		return ""
	}

	return o.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return FormatDate(*t)
}

func transitionFunc[T any, C any, U any](m *resource.Mutations[T, C, U]) func(context.Context, resource.Entity, workflow.Action, string) error {
	return func(ctx context.Context, e resource.Entity, action workflow.Action, comment string) error {
		_, err := m.Transition(ctx, e, action, comment)
		return err
	}
}

// BOQ

func NewBOQBoard(svc *Services, projectID uuid.UUID) View {
	src := newSource("Ведомости объёмов работ", projectID, svc.Session.Role, svc.BOQs.Queries, svc.BOQs.Mutations,
		func(b boq.BOQ) boardRow {
			return boardRow{number: b.Number, title: b.Title, amount: FormatNullMoney(b.Total), date: b.CreatedAt}
		})

	src.open = func(r boardRow) View { return newBOQDocument(svc, r.entity.EntityID()) }
	src.create = func() View { return newBOQForm(svc, projectID) }

	return newBoard(svc, src)
}

func newBOQDocument(svc *Services, id uuid.UUID) View {
	h := svc.BOQs

	return newDocument(svc, docSource{
		kind:    "ВОР",
		machine: boq.Workflow,
		role:    svc.Session.Role,
		load: func(ctx context.Context) (docData, error) {
			b, items, err := h.Load(ctx, id)
			if err != nil {
				return docData{}, err
			}

			lines := make([]docLine, len(items))
			for i, it := range items {
				lines[i] = docLine{
					id: it.ID, section: it.Section, code: it.Code, name: it.Name, unit: it.Unit,
					quantity: it.Quantity, price: it.UnitPrice, total: it.Total,
				}
			}

			return docData{
				entity: b,
				number: b.Number,
				title:  b.Title,
				fields: []docField{
					{"Версия", fmt.Sprint(b.Version)},
					{"Создана", FormatDate(b.CreatedAt)},
					{"Утверждена", formatTime(b.ApprovedAt)},
					{"Примечание", b.Notes},
				},
				lines:  lines,
				export: export.FromBOQ(b, items),
			}, nil
		},
		transition: transitionFunc(h.Mutations),
		lines: &lineOps{
			code: true,
			add: func(ctx context.Context, headerID uuid.UUID, v lineValues) error {
				_, err := h.Items.Create(ctx, headerID, boq.ItemParams{
					Section: v.section, Code: v.code, Name: v.name, Unit: v.unit,
					Quantity: v.quantity, UnitPrice: v.price,
				})

				return err
			},
			update: func(ctx context.Context, headerID uuid.UUID, l docLine, v lineValues) error {
				_, err := h.Items.Update(ctx, headerID, l.id, boq.ItemUpdate{
					Section: &v.section, Name: &v.name, Unit: &v.unit,
					Quantity: &v.quantity, UnitPrice: &v.price,
				})

				return err
			},
			remove: h.Items.Delete,
		},
		keys: []docKey{{
			key:  "i",
			help: "импорт строк",
			run: func(d docData) tea.Cmd {
				b, ok := d.entity.(*boq.BOQ)
				if !ok || !boq.Workflow.IsEditable(b.Status) {
					return nil
				}

				return Push(NewImportModel(svc, b))
			},
		}},
	})
}

// Estimates

func NewEstimateBoard(svc *Services, projectID uuid.UUID) View {
	src := newSource("Сметы", projectID, svc.Session.Role, svc.Estimates.Queries, svc.Estimates.Mutations,
		func(e estimate.Estimate) boardRow {
			return boardRow{number: e.Number, title: e.Title, amount: FormatNullMoney(e.Total), date: e.CreatedAt}
		})

	src.open = func(r boardRow) View { return newEstimateDocument(svc, r.entity.EntityID()) }
	src.create = func() View { return NewEstimateWizard(svc, projectID, nil) }

	return newBoard(svc, src)
}

func newEstimateDocument(svc *Services, id uuid.UUID) View {
	h := svc.Estimates

	return newDocument(svc, docSource{
		kind:    "Смета",
		machine: estimate.Workflow,
		role:    svc.Session.Role,
		load: func(ctx context.Context) (docData, error) {
			e, err := h.Queries.Get(ctx, id)
			if err != nil {
				return docData{}, err
			}

			items, err := h.Items.List(ctx, id)
			if err != nil {
				return docData{}, err
			}

			var source string
			if b, err := svc.BOQs.Queries.Get(ctx, e.BOQID); err == nil {
				source = b.Number + " " + b.Title
			}

			lines := make([]docLine, len(items))
			for i, it := range items {
				lines[i] = docLine{
					id: it.ID, section: it.Section, name: it.Name, unit: it.Unit,
					quantity: it.Quantity, price: it.UnitPrice, total: it.Total,
				}
			}

			return docData{
				entity: e,
				number: e.Number,
				title:  e.Title,
				fields: []docField{
					{"Подрядчик", orgName(ctx, svc, e.ContractorID)},
					{"ВОР", source},
					{"Версия", fmt.Sprint(e.Version)},
					{"Утверждена", formatTime(e.ApprovedAt)},
					{"Примечание", e.Notes},
				},
				lines:  lines,
				export: export.FromEstimate(e, items),
			}, nil
		},
		transition: transitionFunc(h.Mutations),
		lines: &lineOps{
			priceOnly: true,
			add: func(ctx context.Context, headerID uuid.UUID, v lineValues) error {
				_, err := h.Items.Create(ctx, headerID, estimate.ItemParams{
					Section: v.section, Name: v.name, Unit: v.unit,
					Quantity: v.quantity, UnitPrice: v.price,
				})

				return err
			},
			update: func(ctx context.Context, headerID uuid.UUID, l docLine, v lineValues) error {
				_, err := h.Items.Update(ctx, headerID, l.id, estimate.ItemUpdate{Quantity: &v.quantity, UnitPrice: &v.price})
				return err
			},
			remove: h.Items.Delete,
		},
	})
}

// Volumes

func NewVolumeBoard(svc *Services, projectID uuid.UUID) View {
	src := newSource("Тома РД", projectID, svc.Session.Role, svc.Volumes.Queries, svc.Volumes.Mutations,
		func(v volume.Volume) boardRow {
			title := v.Title
			if v.Discipline != "" {
				title = v.Discipline + " · " + title
			}

			return boardRow{number: v.Code, title: title, amount: fmt.Sprintf("ред. %d", v.Version), date: v.CreatedAt}
		})

	src.create = func() View { return newVolumeUpload(svc, projectID, nil) }
	src.keys = []boardKey{
		{
			key:  "f",
			help: "скачать файл",
			run: func(r boardRow) tea.Cmd {
				v, ok := r.entity.(volume.Volume)
				if !ok {
					return nil
				}

				return Push(newDownloadModel(svc, v))
			},
		},
		{
			key:  "u",
			help: "новая редакция",
			run: func(r boardRow) tea.Cmd {
				v, ok := r.entity.(volume.Volume)
				if !ok {
					return nil
				}

				return Push(newVolumeUpload(svc, projectID, &v))
			},
		},
	}

	return newBoard(svc, src)
}

// Purchase requests

func NewRequestBoard(svc *Services, projectID uuid.UUID) View {
	src := newSource("Заявки на закупку", projectID, svc.Session.Role, svc.Requests.Queries, svc.Requests.Mutations,
		func(pr request.PurchaseRequest) boardRow {
			return boardRow{number: pr.Number, title: pr.FundingType.Label(), amount: FormatNullMoney(pr.Total), date: pr.CreatedAt}
		})

	src.open = func(r boardRow) View { return newRequestDocument(svc, r.entity.EntityID()) }
	src.create = func() View { return NewRequestWizard(svc, projectID, nil) }

	return newBoard(svc, src)
}

func newRequestDocument(svc *Services, id uuid.UUID) View {
	h := svc.Requests

	funding := func(want request.FundingType, open func(pr request.PurchaseRequest) View) func(d docData) tea.Cmd {
		return func(d docData) tea.Cmd {
			pr, ok := d.entity.(*request.PurchaseRequest)
			if !ok || pr.FundingType != want {
				return nil
			}

			return Push(open(*pr))
		}
	}

	return newDocument(svc, docSource{
		kind:    "Заявка",
		machine: request.Workflow,
		role:    svc.Session.Role,
		load: func(ctx context.Context) (docData, error) {
			pr, err := h.Queries.Get(ctx, id)
			if err != nil {
				return docData{}, err
			}

			items, err := h.Items.List(ctx, id)
			if err != nil {
				return docData{}, err
			}

			var source string
			if e, err := svc.Estimates.Queries.Get(ctx, pr.EstimateID); err == nil {
				source = e.Number + " " + e.Title
			}

			letters, advances, err := h.Funding(ctx, pr)
			if err != nil {
				return docData{}, err
			}

			fields := []docField{
				{"Финансирование", pr.FundingType.Label()},
				{"Смета", source},
				{"Срок поставки", pr.NeededBy.String()},
				{"Утверждена", formatTime(pr.ApprovedAt)},
				{"Примечание", pr.Notes},
			}

			switch pr.FundingType {
			case request.FundingDistributionLetter:
				fields = append(fields, docField{"Распределительные письма", fmt.Sprint(len(letters))})
			case request.FundingAdvance:
				fields = append(fields, docField{"Авансы", fmt.Sprint(len(advances))})
			}

			lines := make([]docLine, len(items))
			for i, it := range items {
				lines[i] = docLine{
					id: it.ID, section: it.Section, name: it.Name, unit: it.Unit,
					quantity: it.Quantity, price: it.UnitPrice, total: it.Total,
				}
			}

			return docData{
				entity: pr,
				number: pr.Number,
				fields: fields,
				lines:  lines,
				export: export.FromRequest(pr, items),
			}, nil
		},
		transition: transitionFunc(h.Mutations),
		lines: &lineOps{
			priceOnly: true,
			add: func(ctx context.Context, headerID uuid.UUID, v lineValues) error {
				_, err := h.Items.Create(ctx, headerID, request.ItemParams{
					Section: v.section, Name: v.name, Unit: v.unit,
					Quantity: v.quantity, UnitPrice: v.price,
				})

				return err
			},
			update: func(ctx context.Context, headerID uuid.UUID, l docLine, v lineValues) error {
				_, err := h.Items.Update(ctx, headerID, l.id, request.ItemUpdate{Quantity: &v.quantity, UnitPrice: &v.price})
				return err
			},
			remove: h.Items.Delete,
		},
		keys: []docKey{
			{key: "l", help: "письма", run: funding(request.FundingDistributionLetter, func(pr request.PurchaseRequest) View { return newLetterBoard(svc, pr) })},
			{key: "v", help: "авансы", run: funding(request.FundingAdvance, func(pr request.PurchaseRequest) View { return newAdvanceBoard(svc, pr) })},
		},
	})
}

func newLetterBoard(svc *Services, pr request.PurchaseRequest) View {
	h := svc.Requests.Letters

	src := newSource("Распределительные письма · "+pr.Number, pr.ID, svc.Session.Role, h.Queries, h.Mutations,
		func(l request.DistributionLetter) boardRow {
			return boardRow{number: l.Number, title: l.Notes, amount: FormatMoney(l.Amount), date: l.CreatedAt}
		})

	src.create = func() View { return newLetterForm(svc, pr) }

	return newBoard(svc, src)
}

func newAdvanceBoard(svc *Services, pr request.PurchaseRequest) View {
	h := svc.Requests.Advances

	src := newSource("Авансы · "+pr.Number, pr.ID, svc.Session.Role, h.Queries, h.Mutations,
		func(a request.Advance) boardRow {
			return boardRow{
				number: a.Number,
				title:  fmt.Sprintf("%s%% до %s", a.Percent.String(), a.DueDate.String()),
				amount: FormatMoney(a.Amount),
				date:   a.CreatedAt,
			}
		})

	src.create = func() View { return newAdvanceForm(svc, pr) }

	return newBoard(svc, src)
}

// Tenders

func NewTenderBoard(svc *Services, projectID uuid.UUID) View {
	src := newSource("Тендеры", projectID, svc.Session.Role, svc.Tenders.Queries, svc.Tenders.Mutations,
		func(t tender.Tender) boardRow {
			return boardRow{number: t.Number, title: t.Title, amount: FormatNullMoney(t.StartPrice), date: t.CreatedAt}
		})

	src.open = func(r boardRow) View { return newTenderDocument(svc, r.entity.EntityID()) }
	src.create = func() View { return newTenderForm(svc, projectID) }
	src.custom = map[workflow.Action]func(boardRow, string) View{
		workflow.ActionAward: func(r boardRow, comment string) View {
			t, _ := r.entity.(tender.Tender)
			return newAwardForm(svc, t, comment)
		},
	}

	return newBoard(svc, src)
}

func newTenderDocument(svc *Services, id uuid.UUID) View {
	h := svc.Tenders

	// Lots are numbered in order of creation.
	var lots int

	return newDocument(svc, docSource{
		kind:    "Тендер",
		machine: tender.Workflow,
		role:    svc.Session.Role,
		load: func(ctx context.Context) (docData, error) {
			t, err := h.Queries.Get(ctx, id)
			if err != nil {
				return docData{}, err
			}

			items, err := h.Lots.List(ctx, id)
			if err != nil {
				return docData{}, err
			}

			lots = len(items)

			var winner string
			if t.WinnerID != nil {
				winner = orgName(ctx, svc, *t.WinnerID)
			}

			lines := make([]docLine, len(items))
			for i, l := range items {
				lines[i] = docLine{
					id: l.ID, code: fmt.Sprint(l.Number), name: fmt.Sprintf("Лот %d. %s", l.Number, l.Name), unit: l.Unit,
					quantity: l.Quantity, price: l.StartPrice, total: l.Total,
				}
			}

			return docData{
				entity: t,
				number: t.Number,
				title:  t.Title,
				fields: []docField{
					{"Опубликован", formatTime(t.PublishedAt)},
					{"Приём заявок до", formatTime(t.Deadline)},
					{"Начальная цена", FormatNullMoney(t.StartPrice)},
					{"Победитель", winner},
					{"Примечание", t.Notes},
				},
				lines:  lines,
				export: export.FromTender(t, items),
			}, nil
		},
		transition: transitionFunc(h.Mutations),
		lines: &lineOps{
			add: func(ctx context.Context, headerID uuid.UUID, v lineValues) error {
				_, err := h.Lots.Create(ctx, headerID, tender.LotParams{
					Number: lots + 1, Name: v.name, Unit: v.unit,
					Quantity: v.quantity, StartPrice: v.price,
				})

				return err
			},
			update: func(ctx context.Context, headerID uuid.UUID, l docLine, v lineValues) error {
				_, err := h.Lots.Update(ctx, headerID, l.id, tender.LotUpdate{Name: &v.name, Quantity: &v.quantity, StartPrice: &v.price})
				return err
			},
			remove: h.Lots.Delete,
		},
		custom: map[workflow.Action]func(docData, string) View{
			workflow.ActionAward: func(d docData, comment string) View {
				t, _ := d.entity.(*tender.Tender)
				return newAwardForm(svc, *t, comment)
			},
		},
	})
}

// Orders and deliveries

func NewOrderBoard(svc *Services, projectID uuid.UUID) View {
	src := newSource("Заказы поставщикам", projectID, svc.Session.Role, svc.Orders.Queries, svc.Orders.Mutations,
		func(o order.PurchaseOrder) boardRow {
			return boardRow{number: o.Number, title: "Поставка " + o.DeliveryDate.String(), amount: FormatNullMoney(o.Total), date: o.CreatedAt}
		})

	src.open = func(r boardRow) View { return newOrderDocument(svc, r.entity.EntityID()) }
	src.create = func() View { return newOrderForm(svc, projectID) }
	src.keys = []boardKey{{
		key:  "v",
		help: "поставки",
		run: func(r boardRow) tea.Cmd {
			o, ok := r.entity.(order.PurchaseOrder)
			if !ok {
				return nil
			}

			return Push(newDeliveryBoard(svc, o))
		},
	}}

	return newBoard(svc, src)
}

func newOrderDocument(svc *Services, id uuid.UUID) View {
	h := svc.Orders

	return newDocument(svc, docSource{
		kind:    "Заказ",
		machine: order.Workflow,
		role:    svc.Session.Role,
		load: func(ctx context.Context) (docData, error) {
			o, err := h.Queries.Get(ctx, id)
			if err != nil {
				return docData{}, err
			}

			items, err := h.Items.List(ctx, id)
			if err != nil {
				return docData{}, err
			}

			supplier := orgName(ctx, svc, o.SupplierID)

			lines := make([]docLine, len(items))
			for i, it := range items {
				lines[i] = docLine{
					id: it.ID, name: it.Name, unit: it.Unit,
					quantity: it.Quantity, price: it.UnitPrice, total: it.Total,
				}
			}

			doc := export.FromOrder(o, items)
			doc.Title = supplier

			return docData{
				entity: o,
				number: o.Number,
				fields: []docField{
					{"Поставщик", supplier},
					{"Дата поставки", o.DeliveryDate.String()},
					{"Подтверждён", formatTime(o.ConfirmedAt)},
					{"Примечание", o.Notes},
				},
				lines:  lines,
				export: doc,
			}, nil
		},
		transition: transitionFunc(h.Mutations),
		lines: &lineOps{
			priceOnly: true,
			add: func(ctx context.Context, headerID uuid.UUID, v lineValues) error {
				_, err := h.Items.Create(ctx, headerID, order.ItemParams{
					Name: v.name, Unit: v.unit, Quantity: v.quantity, UnitPrice: v.price,
				})

				return err
			},
			update: func(ctx context.Context, headerID uuid.UUID, l docLine, v lineValues) error {
				_, err := h.Items.Update(ctx, headerID, l.id, order.ItemUpdate{Quantity: &v.quantity, UnitPrice: &v.price})
				return err
			},
			remove: h.Items.Delete,
		},
		keys: []docKey{{
			key:  "v",
			help: "поставки",
			run: func(d docData) tea.Cmd {
				o, ok := d.entity.(*order.PurchaseOrder)
				if !ok {
					return nil
				}

				return Push(newDeliveryBoard(svc, *o))
			},
		}},
	})
}

func newDeliveryBoard(svc *Services, o order.PurchaseOrder) View {
	h := svc.Orders.Deliveries

	src := newSource("Поставки · "+o.Number, o.ID, svc.Session.Role, h.Queries, h.Mutations,
		func(d order.Delivery) boardRow {
			title := "Ожидается " + d.ExpectedAt.String()
			if d.ReceivedAt != nil {
				title = "Принята " + FormatDate(*d.ReceivedAt)
				if d.ReceivedBy != "" {
					title += ", " + d.ReceivedBy
				}
			}

			return boardRow{number: d.Number, title: title, amount: d.WaybillNo, date: d.CreatedAt}
		})

	src.create = func() View { return newDeliveryForm(svc, o) }

	return newBoard(svc, src)
}
