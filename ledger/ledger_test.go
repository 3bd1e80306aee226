package ledger

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleYAML = `
accounts:
  "701000": Sales of goods
  "706000": Services
  "601000": Purchases
lines:
  - {account: "701000", date: "2025-12-15", credit: 50}
  - {account: "701000", date: "2026-01-10", credit: 100}
  - {account: "706000", date: "2026-01-20", credit: 40, debit: 5}
  - {account: "601000", date: "2026-01-25", debit: 70}
  - {account: "701000", date: "2026-02-02", credit: 30}
`

const sampleSAFT = `<?xml version="1.0" encoding="UTF-8"?>
<AuditFile xmlns="urn:OECD:StandardAuditFile-Tax:PT_1.04_01">
  <MasterFiles>
    <GeneralLedgerAccounts>
      <Account>
        <AccountID>701000</AccountID>
        <AccountDescription>Sales of goods</AccountDescription>
      </Account>
    </GeneralLedgerAccounts>
  </MasterFiles>
  <GeneralLedgerEntries>
    <Journal>
      <Transaction>
        <TransactionDate>2026-01-10</TransactionDate>
        <Lines>
          <Line>
            <AccountID>411000</AccountID>
            <DebitAmount><Amount>120.50</Amount></DebitAmount>
          </Line>
          <Line>
            <AccountID>701000</AccountID>
            <CreditAmount><Amount>120.50</Amount></CreditAmount>
          </Line>
        </Lines>
      </Transaction>
    </Journal>
  </GeneralLedgerEntries>
</AuditFile>`

func date(str string) time.Time {
	when, _ := time.Parse(DateLayout, str)
	return when
}

func TestMatch(t *testing.T) {
	Convey("Matching account codes", t, func() {
		So(Match("70%", "701000"), ShouldBeTrue)
		So(Match("70%", "601000"), ShouldBeFalse)
		So(Match("701000", "701000"), ShouldBeTrue)
		So(Match("701", "701000"), ShouldBeFalse)
		So(Match("%00", "701000"), ShouldBeTrue)
		So(Match("7%1%0", "701000"), ShouldBeTrue)
		So(Match("7%2%", "701000"), ShouldBeFalse)
		So(Match("%", "anything"), ShouldBeTrue)
	})
}

func TestMemory(t *testing.T) {
	Convey("Given a ledger loaded from yaml", t, func() {
		mem, err := Decode(strings.NewReader(sampleYAML))
		So(err, ShouldBeNil)
		So(mem.Len(), ShouldEqual, 5)

		Convey("Balances are grouped per account within the period", func() {
			q := Query{
				Accounts: []string{"70%"},
				From:     date("2026-01-01"),
				To:       date("2026-01-31"),
			}
			list, err := mem.Balances(context.Background(), q)
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 2)
			So(list[0].Account, ShouldEqual, "701000")
			So(list[0].Name, ShouldEqual, "Sales of goods")
			So(list[0].Balance(), ShouldEqual, -100)
			So(list[1].Account, ShouldEqual, "706000")
			So(list[1].Debit, ShouldEqual, 5)
			So(list[1].Credit, ShouldEqual, 40)
		})

		Convey("An open start includes all earlier lines", func() {
			q := Query{
				Accounts: []string{"701000"},
				To:       date("2026-01-31"),
			}
			list, err := mem.Balances(context.Background(), q)
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 1)
			So(list[0].Credit, ShouldEqual, 150)
		})

		Convey("A cancelled context stops the query", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := mem.Balances(ctx, Query{})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given an invalid ledger", t, func() {
		_, err := Decode(strings.NewReader(`lines: [{account: "70", date: "15/01/2026"}]`))
		So(errors.Is(err, ErrFormat), ShouldBeTrue)
	})
}

func TestReadSAFT(t *testing.T) {
	Convey("Given a SAF-T audit file", t, func() {
		mem, err := ReadSAFT(strings.NewReader(sampleSAFT))
		So(err, ShouldBeNil)
		So(mem.Len(), ShouldEqual, 2)

		list, err := mem.Balances(context.Background(), Query{
			Accounts: []string{"%"},
			To:       date("2026-12-31"),
		})
		So(err, ShouldBeNil)
		So(list, ShouldHaveLength, 2)
		So(list[0].Account, ShouldEqual, "411000")
		So(list[0].Debit, ShouldEqual, 120.5)
		So(list[1].Name, ShouldEqual, "Sales of goods")
		So(list[1].Credit, ShouldEqual, 120.5)
	})
}

const (
	rpcUID = `<?xml version="1.0"?>
<methodResponse><params><param><value><int>2</int></value></param></params></methodResponse>`

	rpcAccounts = `<?xml version="1.0"?>
<methodResponse><params><param><value><array><data>
<value><struct>
  <member><name>id</name><value><int>11</int></value></member>
  <member><name>code</name><value><string>701000</string></value></member>
  <member><name>name</name><value><string>Sales of goods</string></value></member>
</struct></value>
</data></array></value></param></params></methodResponse>`

	rpcGroups = `<?xml version="1.0"?>
<methodResponse><params><param><value><array><data>
<value><struct>
  <member><name>account_id</name><value><array><data>
    <value><int>11</int></value>
    <value><string>701000 Sales of goods</string></value>
  </data></array></value></member>
  <member><name>debit</name><value><double>10.0</double></value></member>
  <member><name>credit</name><value><double>250.0</double></value></member>
</struct></value>
</data></array></value></param></params></methodResponse>`
)

func odooServer() *httptest.Server {
	h := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		str := string(body)
		w.Header().Set("Content-Type", "text/xml")
		switch {
		case strings.Contains(str, "<methodName>authenticate</methodName>"):
			io.WriteString(w, rpcUID)
		case strings.Contains(str, "account.account"):
			io.WriteString(w, rpcAccounts)
		case strings.Contains(str, "account.move.line"):
			io.WriteString(w, rpcGroups)
		default:
			http.Error(w, "unexpected call", http.StatusBadRequest)
		}
	}
	return httptest.NewServer(http.HandlerFunc(h))
}

func TestOdoo(t *testing.T) {
	Convey("Given an Odoo server", t, func() {
		srv := odooServer()
		defer srv.Close()

		src, err := NewOdoo(srv.URL, "test", "admin", "admin")
		So(err, ShouldBeNil)
		defer src.Close()

		list, err := src.Balances(context.Background(), Query{
			Accounts: []string{"70%"},
			From:     date("2026-01-01"),
			To:       date("2026-01-31"),
		})
		So(err, ShouldBeNil)
		So(list, ShouldHaveLength, 1)
		So(list[0].Account, ShouldEqual, "701000")
		So(list[0].Name, ShouldEqual, "Sales of goods")
		So(list[0].Balance(), ShouldEqual, -240)
	})

	Convey("Given an invalid url", t, func() {
		_, err := NewOdoo("ftp://odoo.local", "test", "admin", "admin")
		So(err, ShouldNotBeNil)
	})
}
