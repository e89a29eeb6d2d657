package sync

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

// DealFetcher is the source record provider.
type DealFetcher interface {
	FetchDealsByStage(ctx context.Context, stageID string) ([]Deal, error)
}

// PageStore is the destination store: paginated query, create, patch.
type PageStore interface {
	QueryAllPages(ctx context.Context) ([]NotionPage, error)
	CreatePage(ctx context.Context, props Properties) error
	PatchPage(ctx context.Context, pageID string, props Properties) error
}

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Send(ctx context.Context, message string)
}

// RunReport aggregates what one run did.
type RunReport struct {
	Created   []string
	Updated   []string
	Conflicts int
	Skipped   int
}

// Message renders the end-of-run WhatsApp report. The report is always
// sent, including the explicit no-changes form.
func (r RunReport) Message() string {
	header := "🤖 *Relatório da Sincronização RD -> Notion*\n\n"
	var blocks []string
	if len(r.Created) > 0 {
		blocks = append(blocks, "✅ *Novos Leads Adicionados ao Notion*\n\n"+strings.Join(r.Created, "\n\n"))
	}
	if len(r.Updated) > 0 {
		blocks = append(blocks, "🔄 *Leads Existentes que Foram Atualizados*\n\n"+strings.Join(r.Updated, "\n"))
	}
	if len(blocks) == 0 {
		return header + "✅ Nenhuma alteração foi realizada nesta execução."
	}
	return header + strings.Join(blocks, "\n\n---\n\n")
}

// Syncer runs one reconciliation batch: snapshot, index, per-stage deal
// fetch, per-deal decision, and the final report. One run is strictly
// sequential and keeps no state beyond its RunReport.
type Syncer struct {
	Config Config
	Deals  DealFetcher
	Pages  PageStore
	Notify Notifier

	mapper     PropertyMapper
	reconciler Reconciler
}

// NewSyncer wires the reconciliation pipeline for the given collaborators.
func NewSyncer(cfg Config, deals DealFetcher, pages PageStore, notify Notifier) *Syncer {
	return &Syncer{
		Config:     cfg,
		Deals:      deals,
		Pages:      pages,
		Notify:     notify,
		mapper:     NewPropertyMapper(cfg),
		reconciler: NewReconciler(cfg),
	}
}

// Run executes one full batch. The snapshot is read once up front and
// treated as consistent for the whole run. Per-stage fetch failures and
// per-record write failures are logged and skipped; only a failed
// snapshot aborts, since matching without it would duplicate every lead.
func (s *Syncer) Run(ctx context.Context) (RunReport, error) {
	var report RunReport

	log.Printf("Fetching existing leads from Notion")
	snapshot, err := s.Pages.QueryAllPages(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load destination snapshot %w", err)
	}
	index := BuildMatchIndex(snapshot, s.reconciler.Extract, s.mapper.Phones, s.Config.Properties)
	byID, byPhone := index.Size()
	log.Printf("Indexed %d leads by deal id and %d by phone", byID, byPhone)

	for _, stageID := range sortedStageIDs(s.Config.Stages) {
		status := s.Config.Stages[stageID]
		log.Printf("Processing stage %s (status %q)", stageID, status)

		deals, err := s.Deals.FetchDealsByStage(ctx, stageID)
		if err != nil {
			log.Printf("RD Station Error: %v", err)
			continue
		}
		if len(deals) == 0 {
			log.Printf("No deals found in stage %s", stageID)
			continue
		}

		for _, deal := range deals {
			s.syncDeal(ctx, deal, status, index, &report)
		}
	}

	s.Notify.Send(ctx, report.Message())
	return report, nil
}

func (s *Syncer) syncDeal(ctx context.Context, deal Deal, status string, index MatchIndex, report *RunReport) {
	name := deal.Name()
	if name == "" {
		name = DefaultDealName
	}
	phone := s.mapper.Phones.Normalize(deal.RawPhone(s.Config.Containers, s.Config.Phone.FallbackField))
	page := index.Match(deal.ID(), phone)

	candidate := s.mapper.Build(deal, status)
	decision := s.reconciler.Reconcile(page, candidate, status)

	if decision.Conflict != nil {
		log.Printf("Warning: status for %q is %q in Notion but stage implies %q, not changed", name, decision.Conflict.Current, decision.Conflict.Target)
		report.Conflicts++
		s.Notify.Send(ctx, conflictMessage(name, decision))
	}

	switch decision.Action {
	case ActionCreate:
		log.Printf("Creating lead %q in Notion", name)
		if err := s.Pages.CreatePage(ctx, decision.Payload); err != nil {
			log.Printf("Error: %v", err)
			report.Skipped++
			return
		}
		report.Created = append(report.Created, createSummary(name, status, decision.Payload, s.Config.Properties))
	case ActionUpdate:
		log.Printf("Updating lead %q in Notion", name)
		if err := s.Pages.PatchPage(ctx, page.ID(), decision.Payload); err != nil {
			log.Printf("Error: %v", err)
			report.Skipped++
			return
		}
		report.Updated = append(report.Updated,
			fmt.Sprintf("- Lead atualizado: *%s*\n  (%d campos alterados)", name, len(decision.Changes)))
	default:
		log.Printf("No changes detected for lead %q", name)
	}
}

func conflictMessage(name string, decision Decision) string {
	message := fmt.Sprintf(
		"⚠️ *Alerta de Sincronização*\n\n"+
			"O lead *%s* teve uma divergência de status.\n\n"+
			"*- Status no Notion:* %s\n"+
			"*- Etapa no RD (esperado):* %s\n",
		name, decision.Conflict.Current, decision.Conflict.Target)
	if len(decision.Changes) > 0 {
		lines := make([]string, 0, len(decision.Changes))
		for _, change := range decision.Changes {
			lines = append(lines, change.String())
		}
		message += "\n*Outras Alterações Realizadas:*\n" + strings.Join(lines, "\n")
	}
	return message
}

func createSummary(name string, status string, payload Properties, props PropertyNames) string {
	extract := Extractor{}
	phone := extract.FromPayloadProperty(payload.Get(props.Phone))
	if phone == "" {
		phone = "N/A"
	}
	return fmt.Sprintf("*Lead Adicionado*\n- *Nome:* %s\n- *Telefone:* %s\n- *Status:* %s", name, phone, status)
}

func sortedStageIDs(stages map[string]string) []string {
	ids := make([]string, 0, len(stages))
	for id := range stages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
