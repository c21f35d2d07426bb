package domain_test

import (
	"testing"

	"staybook/internal/domain"
)

func TestPriceStay(t *testing.T) {
	stay := mustRange(t, "2024-06-01", "2024-06-04") // 3 nights
	q := domain.PriceStay(10000, stay)

	if q.Nights != 3 {
		t.Fatalf("nights = %d, want 3", q.Nights)
	}
	if q.Subtotal != 30000 {
		t.Fatalf("subtotal = %d, want 30000", q.Subtotal)
	}
	if q.ServiceFee != 4200 {
		t.Fatalf("service fee = %d, want 4200", q.ServiceFee)
	}
	if q.Taxes != 3600 {
		t.Fatalf("taxes = %d, want 3600", q.Taxes)
	}
	if q.Total != 37800 {
		t.Fatalf("total = %d, want 37800", q.Total)
	}
}

func TestPriceStay_OneNight(t *testing.T) {
	q := domain.PriceStay(12345, mustRange(t, "2024-06-01", "2024-06-02"))
	if q.Subtotal != 12345 || q.Total != 12345+q.ServiceFee+q.Taxes {
		t.Fatalf("unexpected quote: %+v", q)
	}
	// integer fee math truncates toward zero, never rounds up
	if q.ServiceFee != 12345*14/100 || q.Taxes != 12345*12/100 {
		t.Fatalf("unexpected fee/taxes: %+v", q)
	}
}
