package source

const selectBalanceById = "SELECT balance FROM accounts WHERE id=$1;"
