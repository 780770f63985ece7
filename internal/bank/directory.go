// internal/bank/directory.go
//
// Account Directory：在帳戶集合上做線性查找。
// 示範規模下可接受；找不到時回傳 -1 / false，由呼叫端轉為驗證錯誤。
package bank

import "strings"

// Directory 為某一時刻帳戶集合的唯讀視圖。
type Directory struct {
	accounts []Account
}

// NewDirectory 以帳戶切片建立 Directory（不拷貝）。
func NewDirectory(accounts []Account) Directory {
	return Directory{accounts: accounts}
}

// Len 回傳帳戶數。
func (d Directory) Len() int { return len(d.accounts) }

// IndexByUsername 以不分大小寫、去除前後空白的帳號名稱查找。
func (d Directory) IndexByUsername(username string) int {
	name := strings.TrimSpace(username)
	for i, a := range d.accounts {
		if strings.EqualFold(a.Username, name) {
			return i
		}
	}
	return -1
}

// IndexByEmail 以不分大小寫的 email 查找。
func (d Directory) IndexByEmail(email string) int {
	addr := strings.TrimSpace(email)
	for i, a := range d.accounts {
		if strings.EqualFold(a.Email, addr) {
			return i
		}
	}
	return -1
}

// IndexByAccountNumber 以帳號字串完全比對。
func (d Directory) IndexByAccountNumber(number string) int {
	for i, a := range d.accounts {
		if a.AccountNumber == number {
			return i
		}
	}
	return -1
}

// IndexByID 以數字 ID 查找。
func (d Directory) IndexByID(id int64) int {
	for i, a := range d.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// ByUsername 回傳帳戶的公開拷貝。
func (d Directory) ByUsername(username string) (Account, bool) {
	return d.at(d.IndexByUsername(username))
}

// ByAccountNumber 回傳帳戶的公開拷貝。
func (d Directory) ByAccountNumber(number string) (Account, bool) {
	return d.at(d.IndexByAccountNumber(strings.TrimSpace(number)))
}

// ByID 回傳帳戶的公開拷貝。
func (d Directory) ByID(id int64) (Account, bool) {
	return d.at(d.IndexByID(id))
}

func (d Directory) at(i int) (Account, bool) {
	if i < 0 {
		return Account{}, false
	}
	return d.accounts[i].Public(), true
}
