package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/lifeos/internal/domain"
)

var financialFields = map[string]bool{
	"bankA": true, "bankB": true, "bankC": true,
	"transactions": true, "assets": true, "businesses": true, "loans": true,
	"legacyProjects": true, "budgetSnapshots": true, "mindsetLogs": true,
}

// SanitizeFinancial repairs a serialized FinancialRecord.
// On a top-level failure it returns the default record and an error wrapping domain.ErrCorruptData.
func SanitizeFinancial(data []byte) (domain.FinancialRecord, []string, error) {
	o, err := parseObject(data)
	if err != nil {
		return domain.DefaultFinancialRecord(), nil, fmt.Errorf("SanitizeFinancial: %w: %v", domain.ErrCorruptData, err)
	}

	c := &coercer{}
	rec := domain.FinancialRecord{
		BankA: c.decimal(o, "bankA", ""),
		BankB: c.decimal(o, "bankB", ""),
		BankC: c.decimal(o, "bankC", ""),
	}

	for i, raw := range c.array(o, "transactions", "") {
		if tx, ok := sanitizeTransaction(c, raw, fmt.Sprintf("transactions[%d].", i)); ok {
			rec.Transactions = append(rec.Transactions, tx)
		}
	}
	for i, raw := range c.array(o, "assets", "") {
		path := fmt.Sprintf("assets[%d].", i)
		if e, ok := elem(c, raw, path); ok {
			rec.Assets = append(rec.Assets, domain.Asset{
				ID:    c.id(e, path),
				Name:  c.str(e, "name", path),
				Type:  c.str(e, "type", path),
				Value: c.decimal(e, "value", path),
				ROI:   c.decimal(e, "roi", path),
			})
		}
	}
	for i, raw := range c.array(o, "businesses", "") {
		path := fmt.Sprintf("businesses[%d].", i)
		if e, ok := elem(c, raw, path); ok {
			rec.Businesses = append(rec.Businesses, domain.Business{
				ID:             c.id(e, path),
				Name:           c.str(e, "name", path),
				Valuation:      c.decimal(e, "valuation", path),
				MonthlyRevenue: c.decimal(e, "monthlyRevenue", path),
			})
		}
	}
	for i, raw := range c.array(o, "loans", "") {
		path := fmt.Sprintf("loans[%d].", i)
		if e, ok := elem(c, raw, path); ok {
			rec.Loans = append(rec.Loans, domain.Loan{
				ID:           c.id(e, path),
				Name:         c.str(e, "name", path),
				Amount:       c.decimal(e, "amount", path),
				InterestRate: c.decimal(e, "interestRate", path),
			})
		}
	}
	for i, raw := range c.array(o, "legacyProjects", "") {
		path := fmt.Sprintf("legacyProjects[%d].", i)
		if e, ok := elem(c, raw, path); ok {
			progress := c.integer(e, "progress", path)
			if progress < 0 || progress > 100 {
				c.notef("%sprogress: %d clamped to 0..100", path, progress)
				progress = clamp(progress, 0, 100)
			}
			rec.LegacyProjects = append(rec.LegacyProjects, domain.LegacyProject{
				ID:          c.id(e, path),
				Title:       c.str(e, "title", path),
				Description: c.str(e, "description", path),
				Progress:    progress,
			})
		}
	}
	for i, raw := range c.array(o, "budgetSnapshots", "") {
		path := fmt.Sprintf("budgetSnapshots[%d].", i)
		if e, ok := elem(c, raw, path); ok {
			rec.BudgetSnapshots = append(rec.BudgetSnapshots, domain.BudgetSnapshot{
				ID:      c.id(e, path),
				Month:   c.str(e, "month", path),
				Income:  c.decimal(e, "income", path),
				Expense: c.decimal(e, "expense", path),
			})
		}
	}
	for i, raw := range c.array(o, "mindsetLogs", "") {
		path := fmt.Sprintf("mindsetLogs[%d].", i)
		if e, ok := elem(c, raw, path); ok {
			rec.MindsetLogs = append(rec.MindsetLogs, domain.MindsetLog{
				ID:    c.id(e, path),
				Date:  c.dayOrToday(e, "date", path),
				Entry: c.str(e, "entry", path),
				Mood:  c.str(e, "mood", path),
			})
		}
	}

	for k, v := range o {
		if financialFields[k] {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]json.RawMessage)
		}
		rec.Extra[k] = v
	}

	rec.EnsureCollections()
	return rec, c.notes, nil
}

func sanitizeTransaction(c *coercer, raw json.RawMessage, path string) (domain.Transaction, bool) {
	e, ok := elem(c, raw, path)
	if !ok {
		return domain.Transaction{}, false
	}

	tx := domain.Transaction{
		ID:          c.id(e, path),
		Date:        c.dayOrToday(e, "date", path),
		Amount:      c.decimal(e, "amount", path),
		Description: c.str(e, "description", path),
		Category:    domain.Category(c.str(e, "category", path)),
		Bank:        domain.Bank(strings.ToUpper(c.str(e, "bank", path))),
		Subcategory: c.str(e, "subcategory", path),
	}

	// Early records kept expenses positive and flagged them with a type field.
	if t := strings.ToLower(c.str(e, "type", path)); t == "expense" && tx.Amount.IsPositive() {
		tx.Amount = tx.Amount.Neg()
		c.notef("%samount: legacy expense sign flipped", path)
	}

	if !tx.Category.Valid() {
		fallback := domain.CategoryNeeds
		if tx.Amount.IsPositive() {
			fallback = domain.CategoryIncome
		}
		c.notef("%scategory: %q replaced with %s", path, tx.Category, fallback)
		tx.Category = fallback
	}
	if !tx.Bank.Valid() {
		fallback := domain.BankC
		if tx.Amount.IsPositive() {
			fallback = domain.BankA
		}
		c.notef("%sbank: %q replaced with %s", path, tx.Bank, fallback)
		tx.Bank = fallback
	}
	return tx, true
}

// SanitizeHabits repairs a serialized habit list. A legacy {"habits": [...]} wrapper is unwrapped.
func SanitizeHabits(data []byte) ([]domain.Habit, []string, error) {
	c := &coercer{}

	items, err := parseArray(data)
	if err != nil {
		o, oerr := parseObject(data)
		if oerr != nil {
			return []domain.Habit{}, nil, fmt.Errorf("SanitizeHabits: %w: %v", domain.ErrCorruptData, err)
		}
		if _, ok := o["habits"]; !ok {
			return []domain.Habit{}, nil, fmt.Errorf("SanitizeHabits: %w: object without habits", domain.ErrCorruptData)
		}
		c.notef("habits: unwrapped legacy object")
		items = c.array(o, "habits", "")
	}

	habits := make([]domain.Habit, 0, len(items))
	for i, raw := range items {
		path := fmt.Sprintf("[%d].", i)
		e, ok := elem(c, raw, path)
		if !ok {
			continue
		}

		h := domain.Habit{
			ID:           c.id(e, path),
			Name:         strings.TrimSpace(c.str(e, "name", path)),
			Streak:       c.integer(e, "streak", path),
			ReminderTime: c.str(e, "reminderTime", path),
			Category:     c.str(e, "category", path),
		}
		if h.Name == "" {
			h.Name = "Untitled habit"
			c.notef("%sname: missing, defaulted", path)
		}
		if h.Category == "" {
			h.Category = domain.DefaultHabitCategory
		}
		if h.Streak < 0 {
			c.notef("%sstreak: %d clamped to 0", path, h.Streak)
			h.Streak = 0
		}

		history := c.array(e, "history", path)
		for j, rd := range history {
			var s string
			if err := json.Unmarshal(rd, &s); err != nil {
				c.notef("%shistory[%d]: not a date string, dropped", path, j)
				continue
			}
			d, err := ParseDay(s)
			if err != nil {
				c.notef("%shistory[%d]: %q dropped", path, j, s)
				continue
			}
			h.History = h.History.With(d)
		}
		if h.History.Len() != len(history) {
			c.notef("%shistory: %d entries collapsed to %d unique days", path, len(history), h.History.Len())
		}

		stored, hadStored := c.day(e, "lastCompleted", path)
		if latest, ok := h.History.Latest(); ok {
			h.LastCompleted = &latest
			if !hadStored || stored != latest {
				c.notef("%slastCompleted: recomputed from history", path)
			}
		} else if hadStored {
			c.notef("%slastCompleted: cleared, history is empty", path)
		}

		habits = append(habits, h)
	}
	return habits, c.notes, nil
}

// SanitizeProfile repairs a serialized UserProfile.
func SanitizeProfile(data []byte) (domain.UserProfile, []string, error) {
	o, err := parseObject(data)
	if err != nil {
		return domain.DefaultProfile(), nil, fmt.Errorf("SanitizeProfile: %w: %v", domain.ErrCorruptData, err)
	}

	c := &coercer{}
	p := domain.UserProfile{
		Name:         c.str(o, "name", ""),
		XP:           c.integer(o, "xp", ""),
		Level:        c.integer(o, "level", ""),
		SystemicRisk: c.integer(o, "systemicRisk", ""),
		Mission:      c.str(o, "mission", ""),
	}
	if p.Name == "" {
		p.Name = domain.DefaultProfile().Name
	}
	if p.XP < 0 {
		c.notef("xp: %d clamped to 0", p.XP)
		p.XP = 0
	}
	if p.Level < 1 {
		c.notef("level: %d raised to 1", p.Level)
		p.Level = 1
	}
	if p.SystemicRisk < 0 || p.SystemicRisk > 100 {
		c.notef("systemicRisk: %d clamped to 0..100", p.SystemicRisk)
		p.SystemicRisk = clamp(p.SystemicRisk, 0, 100)
	}
	if d, ok := c.day(o, "birthDate", ""); ok {
		p.BirthDate = &d
	}

	rank := domain.RankFor(p.Level)
	if stored := c.str(o, "rank", ""); stored != rank {
		c.notef("rank: %q recomputed as %q", stored, rank)
	}
	p.Rank = rank

	return p, c.notes, nil
}

// SanitizeLibrary repairs a serialized book list.
func SanitizeLibrary(data []byte) ([]domain.Book, []string, error) {
	items, err := parseArray(data)
	if err != nil {
		return []domain.Book{}, nil, fmt.Errorf("SanitizeLibrary: %w: %v", domain.ErrCorruptData, err)
	}

	c := &coercer{}
	books := make([]domain.Book, 0, len(items))
	for i, raw := range items {
		path := fmt.Sprintf("[%d].", i)
		e, ok := elem(c, raw, path)
		if !ok {
			continue
		}
		b := domain.Book{
			ID:     c.id(e, path),
			Title:  c.str(e, "title", path),
			Author: c.str(e, "author", path),
			Status: c.str(e, "status", path),
			Notes:  []domain.NeuralNote{},
		}
		if b.Status != domain.BookCompleted {
			if b.Status != domain.BookReading {
				c.notef("%sstatus: %q replaced with %s", path, b.Status, domain.BookReading)
			}
			b.Status = domain.BookReading
		}
		for j, rn := range c.array(e, "notes", path) {
			npath := fmt.Sprintf("%snotes[%d].", path, j)
			n, ok := elem(c, rn, npath)
			if !ok {
				continue
			}
			b.Notes = append(b.Notes, domain.NeuralNote{
				ID:      c.id(n, npath),
				Concept: c.str(n, "concept", npath),
				Problem: c.str(n, "problem", npath),
				Action:  c.str(n, "action", npath),
				Example: c.str(n, "example", npath),
			})
		}
		books = append(books, b)
	}
	return books, c.notes, nil
}

// SanitizeJournal repairs a serialized journal.
func SanitizeJournal(data []byte) ([]domain.JournalEntry, []string, error) {
	items, err := parseArray(data)
	if err != nil {
		return []domain.JournalEntry{}, nil, fmt.Errorf("SanitizeJournal: %w: %v", domain.ErrCorruptData, err)
	}

	c := &coercer{}
	entries := make([]domain.JournalEntry, 0, len(items))
	for i, raw := range items {
		path := fmt.Sprintf("[%d].", i)
		e, ok := elem(c, raw, path)
		if !ok {
			continue
		}
		entries = append(entries, domain.JournalEntry{
			ID:      c.id(e, path),
			Date:    c.dayOrToday(e, "date", path),
			Content: c.str(e, "content", path),
			Mood:    c.str(e, "mood", path),
		})
	}
	return entries, c.notes, nil
}

// SanitizeChat repairs a serialized chat log.
func SanitizeChat(data []byte) ([]domain.ChatMessage, []string, error) {
	items, err := parseArray(data)
	if err != nil {
		return []domain.ChatMessage{}, nil, fmt.Errorf("SanitizeChat: %w: %v", domain.ErrCorruptData, err)
	}

	c := &coercer{}
	msgs := make([]domain.ChatMessage, 0, len(items))
	for i, raw := range items {
		path := fmt.Sprintf("[%d].", i)
		e, ok := elem(c, raw, path)
		if !ok {
			continue
		}
		m := domain.ChatMessage{
			ID:      c.id(e, path),
			Role:    c.str(e, "role", path),
			Text:    c.str(e, "text", path),
			Offline: c.boolean(e, "offline"),
		}
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			c.notef("%srole: %q replaced with %s", path, m.Role, domain.RoleAssistant)
			m.Role = domain.RoleAssistant
		}
		if raw, ok := e["at"]; ok {
			_ = json.Unmarshal(raw, &m.At)
		}
		msgs = append(msgs, m)
	}
	return msgs, c.notes, nil
}

// elem decodes one collection element, dropping it (with a note) when it is not an object.
func elem(c *coercer, raw json.RawMessage, path string) (object, bool) {
	o, err := parseObject(raw)
	if err != nil {
		c.notef("%s: not an object, dropped", strings.TrimSuffix(path, "."))
		return nil, false
	}
	return o, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
